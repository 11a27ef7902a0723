package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/tenants/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler wires the tenant directory to the HTTP boundary.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the tenant endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tenants", h.List)
	r.Post("/tenants", h.Create)
	r.Get("/tenants/{id}", h.Get)
	r.Put("/tenants/{id}", h.Rename)
	r.Delete("/tenants/{id}", h.Delete)
}

type tenantPayload struct {
	Name string `json:"name"`
}

// List implements GET /tenants.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindTenant}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	opts := service.ListOptions{}
	if name := r.URL.Query().Get("name"); name != "" {
		opts.Name = &name
	}

	tenants, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, tenants)
}

// Create implements POST /tenants.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbCreate, Kind: access.KindTenant}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body tenantPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.svc.Create(r.Context(), body.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, t)
}

// Get implements GET /tenants/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindTenant}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid tenant id")
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

// Rename implements PUT /tenants/{id}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbUpdate, Kind: access.KindTenant}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid tenant id")
		return
	}

	var body tenantPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.svc.Rename(r.Context(), id, body.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, t)
}

// Delete implements DELETE /tenants/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbDelete, Kind: access.KindTenant}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid tenant id")
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
		problem.NotFound(w, "tenant not found")
	case errors.Is(err, service.ErrConflictName):
		problem.Conflict(w, "tenant name already exists")
	case errors.Is(err, service.ErrInUse):
		problem.Conflict(w, "tenant still has dependent resources")
	default:
		logging.FromRequest(r, h.logger).Error("tenants handler", zap.Error(err))
		problem.Internal(w)
	}
}
