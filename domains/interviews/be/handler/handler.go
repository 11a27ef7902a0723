package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/interviews/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes interview scheduling over HTTP.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("interviews service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the interview endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/interviews", h.List)
	r.Post("/interviews", h.Create)
	r.Get("/interviews/{id}", h.Get)
	r.Put("/interviews/{id}", h.Update)
	r.Delete("/interviews/{id}", h.Delete)
}

type createPayload struct {
	CandidateID uuid.UUID `json:"candidateId"`
	ScheduledAt string    `json:"scheduledAt"`
}

type updatePayload struct {
	ScheduledAt *string `json:"scheduledAt"`
	Status      *string `json:"status"`
}

// List implements GET /interviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindInterview}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	requested, ok := httpapi.QueryUUID(r, "organizationId")
	if !ok {
		problem.BadRequest(w, "invalid organizationId")
		return
	}
	candidateID, ok := httpapi.QueryUUID(r, "candidateId")
	if !ok {
		problem.BadRequest(w, "invalid candidateId")
		return
	}

	opts := service.ListOptions{
		TenantID:    access.ResolveScope(p, requested),
		CandidateID: candidateID,
		Cursor:      httpapi.QueryCursor(r),
		Limit:       httpapi.QueryLimit(r),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := service.Status(raw)
		if !status.Valid() {
			problem.BadRequest(w, "unknown interview status")
			return
		}
		opts.Status = &status
	}

	page, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, page)
}

// Create implements POST /interviews.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbCreate, Kind: access.KindInterview}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body createPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, body.ScheduledAt)
	if err != nil {
		problem.BadRequest(w, "scheduledAt must be an RFC 3339 timestamp")
		return
	}

	iv, err := h.svc.Create(r.Context(), service.CreateInput{
		CandidateID: body.CandidateID,
		ScheduledAt: scheduledAt,
		ActorTenant: access.ResolveScope(p, nil),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, iv)
}

// Get implements GET /interviews/{id}. Cross-tenant ids read as absent.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindInterview}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid interview id")
		return
	}

	iv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !access.CanViewResource(p, iv.TenantID) {
		problem.NotFound(w, "interview not found")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, iv)
}

// Update implements PUT /interviews/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid interview id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbUpdate, Kind: access.KindInterview}, &current.TenantID); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body updatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	var input service.UpdateInput
	if body.ScheduledAt != nil {
		at, err := time.Parse(time.RFC3339, *body.ScheduledAt)
		if err != nil {
			problem.BadRequest(w, "scheduledAt must be an RFC 3339 timestamp")
			return
		}
		input.ScheduledAt = &at
	}
	if body.Status != nil {
		status := service.Status(*body.Status)
		input.Status = &status
	}

	iv, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, iv)
}

// Delete implements DELETE /interviews/{id}. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid interview id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbDelete, Kind: access.KindInterview}, &current.TenantID); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		problem.Validation(w, validationErr.Fields)
	case errors.Is(err, service.ErrNotFound):
		problem.NotFound(w, "interview not found")
	case errors.Is(err, service.ErrCandidateUnknown):
		problem.Unprocessable(w, "candidate does not exist")
	case errors.Is(err, service.ErrSlotTaken):
		problem.Conflict(w, "candidate already has an interview at this time")
	default:
		logging.FromRequest(r, h.logger).Error("interviews handler", zap.Error(err))
		problem.Internal(w)
	}
}
