package httpapi

import (
	"net/http"
	"time"

	"github.com/edushelf/campusd/internal/account"
	"github.com/edushelf/campusd/internal/auth"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "campusd",
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in account.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// invalid credentials map to 401, not the taxonomy's 404
		writeJSON(w, http.StatusUnauthorized, errBody("invalid username or password"))
		return
	}
	tok, err := h.tokens.Issue(auth.Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ProfileID: u.ProfileID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": tok,
		"user":         u,
	})
}
