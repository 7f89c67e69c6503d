package pagination

import (
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/ReviewSentiment/pkg/errors"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Params holds offset based paging extracted from the query string.
type Params struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// DefaultParams returns skip=0, limit=DefaultLimit.
func DefaultParams() Params {
	return Params{Skip: 0, Limit: DefaultLimit}
}

// FromRequest reads skip and limit from the query string. Absent values take
// their defaults; present values must be integers with skip >= 0 and
// 1 <= limit <= MaxLimit.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return p, apperrors.InvalidInputCode("INVALID_PARAMETER", "skip must be an integer greater than or equal to 0")
		}
		p.Skip = v
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxLimit {
			return p, apperrors.InvalidInputCode("INVALID_PARAMETER", "limit must be an integer between 1 and "+strconv.Itoa(MaxLimit))
		}
		p.Limit = v
	}

	return p, nil
}
