package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/repository"
	apperrors "github.com/utafrali/ReviewSentiment/pkg/errors"
)

// DateLayout is the accepted format for report dates.
const DateLayout = "2006-01-02"

// Error codes returned by Report.
const (
	CodeInvalidDateFormat = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
)

// ReportService aggregates sentiment counts over date ranges.
type ReportService struct {
	repo   repository.ReviewRepository
	logger *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(repo repository.ReviewRepository, logger *slog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

// Report counts reviews created on any day from startDate to endDate
// inclusive. Dates are YYYY-MM-DD in UTC.
func (s *ReportService) Report(ctx context.Context, startDate, endDate string) (*domain.Report, error) {
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, apperrors.InvalidInputCode(CodeInvalidDateRange, "start_date must be on or before end_date")
	}

	counts, err := s.repo.CountBySentiment(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	s.logger.DebugContext(ctx, "report generated",
		slog.String("start_date", startDate),
		slog.String("end_date", endDate),
		slog.Int64("total", counts.Total),
	)

	return &domain.Report{
		StartDate:     startDate,
		EndDate:       endDate,
		TotalReviews:  counts.Total,
		PositiveCount: counts.Positive,
		NegativeCount: counts.Negative,
		NeutralCount:  counts.Neutral,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInputCode(CodeInvalidDateFormat, field+" is required (YYYY-MM-DD)")
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.InvalidInputCode(CodeInvalidDateFormat, fmt.Sprintf("%s must use the YYYY-MM-DD format, got %q", field, value))
	}
	return t, nil
}
