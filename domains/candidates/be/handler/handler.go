package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/candidates/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes candidate applications over HTTP.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("candidates service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the candidate endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/candidates", h.List)
	r.Post("/candidates", h.Create)
	r.Get("/candidates/{id}", h.Get)
	r.Put("/candidates/{id}", h.Update)
	r.Delete("/candidates/{id}", h.Delete)
}

// createPayload deliberately has no organization field to bind: the tenant
// comes from the job, and anything the caller sends is dropped here.
type createPayload struct {
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
	JobID  uuid.UUID `json:"jobId"`
}

type updatePayload struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// List implements GET /candidates.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindCandidate}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	requested, ok := httpapi.QueryUUID(r, "organizationId")
	if !ok {
		problem.BadRequest(w, "invalid organizationId")
		return
	}
	jobID, ok := httpapi.QueryUUID(r, "jobId")
	if !ok {
		problem.BadRequest(w, "invalid jobId")
		return
	}

	opts := service.ListOptions{
		TenantID: access.ResolveScope(p, requested),
		JobID:    jobID,
		Cursor:   httpapi.QueryCursor(r),
		Limit:    httpapi.QueryLimit(r),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := service.Status(raw)
		if !status.Valid() {
			problem.BadRequest(w, "unknown candidate status")
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

// Create implements POST /candidates.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbCreate, Kind: access.KindCandidate}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body createPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	c, err := h.svc.Create(r.Context(), service.CreateInput{
		Name:        body.Name,
		Email:       body.Email,
		Status:      service.Status(body.Status),
		JobID:       body.JobID,
		ActorTenant: access.ResolveScope(p, nil),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, c)
}

// Get implements GET /candidates/{id}. Cross-tenant ids read as absent.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindCandidate}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid candidate id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !access.CanViewResource(p, c.TenantID) {
		problem.NotFound(w, "candidate not found")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, c)
}

// Update implements PUT /candidates/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid candidate id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbUpdate, Kind: access.KindCandidate}, &current.TenantID); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body updatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	input := service.UpdateInput{Name: body.Name}
	if body.Status != nil {
		status := service.Status(*body.Status)
		input.Status = &status
	}

	c, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, c)
}

// Delete implements DELETE /candidates/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid candidate id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbDelete, Kind: access.KindCandidate}, &current.TenantID); !dec.Allowed {
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
		problem.NotFound(w, "candidate not found")
	case errors.Is(err, service.ErrJobUnknown):
		problem.Unprocessable(w, "job does not exist")
	case errors.Is(err, service.ErrAlreadyApplied):
		problem.Conflict(w, "candidate already applied to this job")
	case errors.Is(err, service.ErrInUse):
		problem.Conflict(w, "candidate still has interviews")
	default:
		logging.FromRequest(r, h.logger).Error("candidates handler", zap.Error(err))
		problem.Internal(w)
	}
}
