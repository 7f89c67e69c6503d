package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/pkg/httpclient"
	"github.com/utafrali/ReviewSentiment/pkg/tracing"
)

const tracerName = "github.com/utafrali/ReviewSentiment/internal/sentiment"

const topP = 0.9

const systemPrompt = "You are an expert in sentiment analysis of customer reviews. Always answer in the requested JSON format."

const userPromptTemplate = `Analyse the sentiment of the following customer review and classify it as:
- "positive" for favourable sentiment, satisfaction or praise
- "negative" for unfavourable sentiment, dissatisfaction or complaints
- "neutral" for neutral, mixed or purely informative sentiment

Review: %q

Respond ONLY with a JSON object in this format:
{"sentiment": "positive|negative|neutral", "confidence": 0.XX}

where confidence is a number between 0.00 and 1.00 expressing how sure you are of the classification.`

// ChatCompleter is the part of the OpenAI-compatible client the classifier
// needs. *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config is resolved once at startup and never changes afterwards.
type Config struct {
	Enabled       bool
	Model         string
	MaxTokens     int
	Temperature   float32
	Timeout       time.Duration
	ThrottleDelay time.Duration
}

// Classifier labels review text through a chat completion call. It never
// fails: every problem collapses into the neutral fallback. It is safe for
// concurrent use.
type Classifier struct {
	cfg     Config
	client  ChatCompleter
	metrics *Metrics
	logger  *slog.Logger
}

// New creates a Classifier. A nil client disables the LLM call.
func New(cfg Config, client ChatCompleter, metrics *Metrics, logger *slog.Logger) *Classifier {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Classifier{cfg: cfg, client: client, metrics: metrics, logger: logger}
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint such as
// Groq, sending requests through doer.
func NewOpenAIClient(apiKey, baseURL string, doer httpclient.Doer) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if doer != nil {
		cfg.HTTPClient = doer
	}
	return openai.NewClientWithConfig(cfg)
}

// Enabled reports whether Classify will call the LLM.
func (c *Classifier) Enabled() bool {
	return c.cfg.Enabled && c.client != nil
}

// Classify returns the sentiment of text.
func (c *Classifier) Classify(ctx context.Context, text string) domain.Classification {
	if strings.TrimSpace(text) == "" {
		c.metrics.record(outcome{kind: outcomeSkipped, reason: "empty_text"})
		return domain.FallbackClassification()
	}
	if !c.Enabled() {
		c.metrics.record(outcome{kind: outcomeSkipped, reason: "disabled"})
		return domain.FallbackClassification()
	}

	out := c.analyze(ctx, text)
	c.metrics.record(out)

	switch out.kind {
	case outcomeSuccess:
		c.logger.DebugContext(ctx, "review classified",
			slog.String("sentiment", string(out.result.Sentiment)),
			slog.String("confidence", out.result.Confidence),
		)
		return out.result
	case outcomeSoftFailure:
		c.logger.WarnContext(ctx, "sentiment classification unusable, using fallback",
			slog.String("reason", out.reason),
			errAttr(out.err),
		)
		c.throttle(ctx)
	default:
		c.logger.ErrorContext(ctx, "sentiment classification failed, using fallback",
			slog.String("reason", out.reason),
			errAttr(out.err),
		)
	}
	return domain.FallbackClassification()
}

func (c *Classifier) analyze(ctx context.Context, text string) outcome {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "sentiment.Classify")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.cfg.Model),
		attribute.Int("review.length", len(text)),
	)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(callCtx, c.request(text))
	c.metrics.latency.Observe(time.Since(start).Seconds())

	var out outcome
	switch {
	case err != nil:
		out = outcomeFromError(err)
	case len(resp.Choices) == 0:
		out = outcome{kind: outcomeSoftFailure, reason: "empty_reply"}
	default:
		out = parseReply(resp.Choices[0].Message.Content)
	}

	span.SetAttributes(
		attribute.String("sentiment.outcome", out.kind.String()),
		attribute.String("sentiment.reason", out.reason),
	)
	if out.kind != outcomeSuccess {
		if out.err != nil {
			span.RecordError(out.err)
		}
		span.SetStatus(codes.Error, out.reason)
	}
	return out
}

func (c *Classifier) request(text string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptTemplate, text)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		TopP:        topP,
	}
}

// throttle waits once after a soft failure so a rate-limited upstream is not
// hammered by the next request.
func (c *Classifier) throttle(ctx context.Context) {
	if c.cfg.ThrottleDelay <= 0 {
		return
	}
	t := time.NewTimer(c.cfg.ThrottleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func errAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
