package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeSoftFailure
	outcomeHardFailure
	outcomeSkipped
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeSoftFailure:
		return "soft_failure"
	case outcomeHardFailure:
		return "hard_failure"
	case outcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// outcome is the result of one classification attempt. result is only
// meaningful when kind is outcomeSuccess.
type outcome struct {
	kind   outcomeKind
	result domain.Classification
	reason string
	err    error
}

const defaultConfidence = "0.50"

func outcomeFromError(err error) outcome {
	hard := func(reason string) outcome {
		return outcome{kind: outcomeHardFailure, reason: reason, err: err}
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return hard("circuit_open")
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 0:
	case http.StatusTooManyRequests:
		return outcome{kind: outcomeSoftFailure, reason: "rate_limited", err: err}
	case http.StatusServiceUnavailable:
		return outcome{kind: outcomeSoftFailure, reason: "overloaded", err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return hard("auth")
	default:
		return hard("api_error")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return hard("timeout")
	}
	if errors.Is(err, context.Canceled) {
		return hard("canceled")
	}
	return hard("transport")
}

type reply struct {
	Sentiment  *string         `json:"sentiment"`
	Confidence json.RawMessage `json:"confidence"`
}

// parseReply extracts the first JSON object from an LLM answer. Prose and
// markdown fences around the object are ignored.
func parseReply(content string) outcome {
	r, ok := firstObject(content)
	if !ok {
		return outcome{kind: outcomeSoftFailure, reason: "no_json_object"}
	}
	if r.Sentiment == nil {
		return outcome{kind: outcomeSoftFailure, reason: "missing_sentiment"}
	}

	label, ok := domain.ParseSentiment(*r.Sentiment)
	if !ok {
		return outcome{
			kind:   outcomeSoftFailure,
			reason: "invalid_sentiment",
			err:    fmt.Errorf("unknown sentiment label %q", *r.Sentiment),
		}
	}

	confidence, err := parseConfidence(r.Confidence)
	if err != nil {
		return outcome{kind: outcomeSoftFailure, reason: "invalid_confidence", err: err}
	}

	return outcome{
		kind:   outcomeSuccess,
		result: domain.Classification{Sentiment: label, Confidence: confidence},
	}
}

func firstObject(content string) (reply, bool) {
	for i := strings.IndexByte(content, '{'); i >= 0; {
		var r reply
		dec := json.NewDecoder(strings.NewReader(content[i:]))
		if err := dec.Decode(&r); err == nil {
			return r, true
		}
		next := strings.IndexByte(content[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return reply{}, false
}

// parseConfidence accepts a JSON number or a numeric string in [0, 1] and
// formats it with two decimals. An absent value yields the default.
func parseConfidence(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return defaultConfidence, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("decode confidence: %w", err)
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return "", fmt.Errorf("confidence %q is not a number", text)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return "", fmt.Errorf("confidence %v out of range [0, 1]", v)
	}
	return strconv.FormatFloat(v, 'f', 2, 64), nil
}
