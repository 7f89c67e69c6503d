package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the producer and consumer collectors.
type Metrics struct {
	ConsumerReceived  *prometheus.CounterVec
	ConsumerProcessed *prometheus.CounterVec
	ConsumerFailed    *prometheus.CounterVec
	ConsumerDLQ       *prometheus.CounterVec
	ConsumerDuration  *prometheus.HistogramVec

	ProducerPublished *prometheus.CounterVec
	ProducerErrors    *prometheus.CounterVec
	ProducerDuration  *prometheus.HistogramVec
}

// NewMetrics registers the kafka collectors on reg. A nil reg creates
// unregistered collectors, which is what most tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	consumerLabels := []string{"topic", "consumer_group"}

	return &Metrics{
		ConsumerReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Total number of Kafka messages fetched from the broker",
		}, consumerLabels),
		ConsumerProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Total number of successfully processed Kafka messages",
		}, consumerLabels),
		ConsumerFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Total number of Kafka messages that failed all attempts",
		}, consumerLabels),
		ConsumerDLQ: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_dlq_published_total",
			Help: "Total number of messages published to the dead-letter topic",
		}, consumerLabels),
		ConsumerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Duration of Kafka message processing in seconds",
			Buckets: prometheus.DefBuckets,
		}, consumerLabels),
		ProducerPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Total number of Kafka messages published",
		}, []string{"topic"}),
		ProducerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		}, []string{"topic"}),
		ProducerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}
