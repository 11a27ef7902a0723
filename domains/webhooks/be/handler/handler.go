package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	interviews "github.com/hireline/talenttrack/domains/interviews/be/service"
	"github.com/hireline/talenttrack/domains/webhooks/be/service"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes the calendar webhook endpoint. It authenticates with the
// shared-secret signature inside the payload, not with a bearer token.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("webhooks service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the webhook endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/webhooks/calendar", h.Calendar)
}

type calendarPayload struct {
	EventID        string    `json:"eventId"`
	Type           string    `json:"type"`
	InterviewID    uuid.UUID `json:"interviewId"`
	ScheduledAt    *string   `json:"scheduledAt"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Signature      string    `json:"signature"`
}

// Calendar implements POST /webhooks/calendar.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	var body calendarPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	d := service.Delivery{
		EventID:        body.EventID,
		Type:           body.Type,
		InterviewID:    body.InterviewID,
		IdempotencyKey: body.IdempotencyKey,
		Signature:      body.Signature,
	}
	if body.ScheduledAt != nil {
		at, err := time.Parse(time.RFC3339, *body.ScheduledAt)
		if err != nil {
			problem.BadRequest(w, "scheduledAt must be an RFC 3339 timestamp")
			return
		}
		d.ScheduledAt = &at
	}

	result, err := h.svc.Ingest(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		problem.Validation(w, validationErr.Fields)
	case errors.Is(err, service.ErrInvalidSignature):
		problem.Unauthorized(w, "invalid webhook signature")
	case errors.Is(err, service.ErrUnknownEventType):
		problem.Unprocessable(w, "unknown webhook event type")
	case errors.Is(err, interviews.ErrNotFound):
		problem.NotFound(w, "interview not found")
	default:
		logging.FromRequest(r, h.logger).Error("webhooks handler", zap.Error(err))
		problem.Internal(w)
	}
}
