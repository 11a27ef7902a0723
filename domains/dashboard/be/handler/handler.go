package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/dashboard/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes the dashboard metrics endpoint.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("dashboard service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the dashboard endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard/metrics", h.Metrics)
}

// Metrics implements GET /dashboard/metrics. Every role may read; only an
// admin may target another organization.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	requested, ok := httpapi.QueryUUID(r, "organizationId")
	if !ok {
		problem.BadRequest(w, "invalid organizationId")
		return
	}

	tenantID := access.ResolveScope(p, requested)
	if tenantID == nil {
		// Admin without an explicit target reads their own organization.
		tenantID = &p.TenantID
	}

	metrics, err := h.svc.Metrics(r.Context(), *tenantID)
	if err != nil {
		logging.FromRequest(r, h.logger).Error("dashboard handler", zap.Error(err))
		problem.Internal(w)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, metrics)
}
