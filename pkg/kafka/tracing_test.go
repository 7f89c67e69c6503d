package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestKafkaHeaderCarrier_SetGetKeys(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "existing", Value: []byte("v1")}}}
	carrier := NewKafkaHeaderCarrier(&msg)

	assert.Equal(t, "v1", carrier.Get("existing"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("new-key", "new-value")
	carrier.Set("existing", "updated")

	assert.Equal(t, "new-value", carrier.Get("new-key"))
	assert.Equal(t, "updated", carrier.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "new-key"}, carrier.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestKafkaHeaderCarrier_PropagationRoundTrip(t *testing.T) {
	prop := propagation.TraceContext{}
	msg := kafka.Message{}
	NewKafkaHeaderCarrier(&msg).Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := prop.Extract(context.Background(), NewKafkaHeaderCarrier(&msg))
	sc := trace.SpanContextFromContext(ctx)

	assert.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
}

func TestKafkaHeaderCarrier_EmptyHeaders(t *testing.T) {
	msg := kafka.Message{}
	carrier := NewKafkaHeaderCarrier(&msg)
	assert.Empty(t, carrier.Keys())
	assert.Empty(t, carrier.Get("anything"))
}
