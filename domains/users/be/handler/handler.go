package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/talenttrack/domains/users/be/service"
	"github.com/hireline/talenttrack/platform/go/access"
	"github.com/hireline/talenttrack/platform/go/auth"
	"github.com/hireline/talenttrack/platform/go/httpapi"
	"github.com/hireline/talenttrack/platform/go/logging"
	"github.com/hireline/talenttrack/platform/go/problem"
)

// Handler exposes accounts over HTTP: public registration and login plus
// the admin-only user CRUD.
type Handler struct {
	svc    *service.Service
	tokens *auth.TokenManager
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("users service is required")
	}
	if tokens == nil {
		panic("token manager is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// AuthRoutes registers the unauthenticated endpoints.
func (h *Handler) AuthRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// Routes registers the user management endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
}

type registerPayload struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     string    `json:"role"`
	TenantID uuid.UUID `json:"organizationId"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePayload struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type principalView struct {
	UserID   uuid.UUID   `json:"userId"`
	Email    string      `json:"email"`
	Role     access.Role `json:"role"`
	TenantID uuid.UUID   `json:"organizationId"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	User        principalView `json:"user"`
}

// Register implements POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     access.Role(body.Role),
		TenantID: body.TenantID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, u)
}

// Login implements POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.svc.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.Principal())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User: principalView{
			UserID:   u.ID,
			Email:    u.Email,
			Role:     u.Role,
			TenantID: u.TenantID,
		},
	})
}

// List implements GET /users. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindUser}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	tenantID, ok := httpapi.QueryUUID(r, "organizationId")
	if !ok {
		problem.BadRequest(w, "invalid organizationId")
		return
	}

	users, err := h.svc.List(r.Context(), service.ListOptions{TenantID: tenantID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, users)
}

// Create implements POST /users. Admin only; same input as registration.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbCreate, Kind: access.KindUser}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	var body registerPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     access.Role(body.Role),
		TenantID: body.TenantID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, u)
}

// Get implements GET /users/{id}. Admin only.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbRead, Kind: access.KindUser}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, u)
}

// Update implements PUT /users/{id}. Admin only.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbUpdate, Kind: access.KindUser}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid user id")
		return
	}

	var body updatePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.BadRequest(w, "invalid request body")
		return
	}

	input := service.UpdateInput{Name: body.Name}
	if body.Role != nil {
		role := access.Role(*body.Role)
		input.Role = &role
	}

	u, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, u)
}

// Delete implements DELETE /users/{id}. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	if dec := access.Authorize(p, access.Action{Verb: access.VerbDelete, Kind: access.KindUser}, nil); !dec.Allowed {
		problem.Forbidden(w, dec.Reason)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem.BadRequest(w, "invalid user id")
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
		problem.NotFound(w, "user not found")
	case errors.Is(err, service.ErrConflictEmail):
		problem.Conflict(w, "email already registered")
	case errors.Is(err, service.ErrTenantUnknown):
		problem.Unprocessable(w, "organization does not exist")
	case errors.Is(err, service.ErrInvalidCredentials):
		problem.Unauthorized(w, "invalid credentials")
	default:
		logging.FromRequest(r, h.logger).Error("users handler", zap.Error(err))
		problem.Internal(w)
	}
}
