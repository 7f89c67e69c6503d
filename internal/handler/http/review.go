package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/service"
	"github.com/utafrali/ReviewSentiment/pkg/httputil"
	"github.com/utafrali/ReviewSentiment/pkg/pagination"
	"github.com/utafrali/ReviewSentiment/pkg/validator"
)

// CreatedMessage is returned with every successfully stored review.
const CreatedMessage = "Sentiment analysis completed successfully"

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	reports *service.ReportService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, reports *service.ReportService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		reports: reports,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// CreateReviewRequest is the JSON request body for submitting a review.
type CreateReviewRequest struct {
	CustomerName string `json:"customer_name" validate:"required,notblank,max=255"`
	ReviewText   string `json:"review_text" validate:"required,notblank"`
}

// Normalize trims surrounding whitespace so length limits apply to the stored
// values.
func (r *CreateReviewRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.ReviewText = strings.TrimSpace(r.ReviewText)
}

// CreateReviewResponse is returned by POST /api/v1/reviews.
type CreateReviewResponse struct {
	ID              int64            `json:"id"`
	Sentiment       domain.Sentiment `json:"sentiment"`
	ConfidenceScore *string          `json:"confidence_score"`
	Message         string           `json:"message"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	review, err := h.reviews.Submit(r.Context(), service.SubmitReviewInput{
		CustomerName: req.CustomerName,
		ReviewText:   req.ReviewText,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateReviewResponse{
		ID:              review.ID,
		Sentiment:       review.Sentiment,
		ConfidenceScore: review.ConfidenceScore,
		Message:         CreatedMessage,
	})
}

// ListReviews handles GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	reviews, err := h.reviews.ListReviews(r.Context(), params.Skip, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reviews)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, review)
}

// Report handles GET /api/v1/reviews/report
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	report, err := h.reports.Report(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, report)
}
