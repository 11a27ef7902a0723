package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/jobs/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes job postings over HTTP.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("jobs service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the job endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/jobs", h.List)
	r.Post("/jobs", h.Create)
	r.Get("/jobs/{id}", h.Get)
	r.Put("/jobs/{id}", h.Update)
	r.Delete("/jobs/{id}", h.Delete)
}

type createPayload struct {
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	TenantID *uuid.UUID `json:"organizationId"`
}

type updatePayload struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// List implements GET /jobs. Non-admin callers are always scoped to their
// own organization, whatever the query says.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindJob}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	requested, ok := httpapi.QueryUUID(r, "organizationId")
	if !ok {
		problem.BadRequest(w, "invalid organizationId")
		return
	}

	opts := service.ListOptions{
		TenantID: access.ResolveScope(p, requested),
		Cursor:   httpapi.QueryCursor(r),
		Limit:    httpapi.QueryLimit(r),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := service.Status(raw)
		if !status.Valid() {
			problem.BadRequest(w, "unknown job status")
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

// Create implements POST /jobs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbCreate, Kind: access.KindJob}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body createPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	tenantID, err := access.ResolveWriteTenant(p, body.TenantID)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrNoTenant):
			problem.BadRequest(w, "organizationId is required")
		case errors.Is(err, access.ErrTenantMismatch):
			problem.Forbidden(w, "cannot create jobs in another organization")
		default:
			h.fail(w, r, err)
		}
		return
	}

	j, err := h.svc.Create(r.Context(), service.CreateInput{
		Title:    body.Title,
		Status:   service.Status(body.Status),
		TenantID: tenantID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, j)
}

// Get implements GET /jobs/{id}. A job in another organization is reported
// as absent rather than forbidden, so ids cannot be probed across tenants.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindJob}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid job id")
		return
	}

	j, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !access.CanViewResource(p, j.TenantID) {
		problem.NotFound(w, "job not found")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, j)
}

// Update implements PUT /jobs/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid job id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbUpdate, Kind: access.KindJob}, &current.TenantID); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body updatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	input := service.UpdateInput{Title: body.Title}
	if body.Status != nil {
		status := service.Status(*body.Status)
		input.Status = &status
	}

	j, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, j)
}

// Delete implements DELETE /jobs/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid job id")
		return
	}

	current, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dec := access.Authorize(p, access.Action{Verb: access.VerbDelete, Kind: access.KindJob}, &current.TenantID); !dec.Allowed {
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
		problem.NotFound(w, "job not found")
	case errors.Is(err, service.ErrTenantUnknown):
		problem.Unprocessable(w, "organization does not exist")
	case errors.Is(err, service.ErrInUse):
		problem.Conflict(w, "job still has candidates")
	default:
		logging.FromRequest(r, h.logger).Error("jobs handler", zap.Error(err))
		problem.Internal(w)
	}
}
