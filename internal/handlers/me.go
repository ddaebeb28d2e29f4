package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manira/api/internal/platform/auth"
	"github.com/manira/api/internal/platform/httpx"
	"github.com/manira/api/internal/services"
)

// ProfileHandlers exposes the authenticated user's profile endpoints.
type ProfileHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

const maxProfileBodySize = 16 * 1024

// NewProfileHandlers constructs handlers for the /me group.
func NewProfileHandlers(authn *auth.Authenticator, users services.UserService) *ProfileHandlers {
	return &ProfileHandlers{authn: authn, users: users}
}

// Routes wires the /me endpoints onto the provided router.
func (h *ProfileHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.getProfile)
	r.Put("/", h.updateProfile)
}

func (h *ProfileHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(ctx, identity.UserID)
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildUserPayload(user))
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *ProfileHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.NewError("user_service_unavailable", "user service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxProfileBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req updateProfileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	user, err := h.users.UpdateProfile(ctx, services.UpdateProfileCommand{
		UserID:   identity.UserID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildUserPayload(user))
}
