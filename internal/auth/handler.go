package auth

import (
	"encoding/json"
	"net/http"

	"github.com/earnings-tracker/api/internal/user"
	"github.com/earnings-tracker/api/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	Users    user.Repository
	Sessions *SessionStore
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Users:    user.NewRepository(db),
		Sessions: NewSessionStore(db),
	}
}

type loginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if in.Username == "" || in.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	// A missing user and a wrong password answer the same way.
	u, err := h.Users.FindByUsername(r.Context(), in.Username)
	if err != nil || !utils.CheckPassword(u.Password, in.Password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, jti, expiresAt, err := GenerateToken(u.ID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	if err := h.Sessions.Create(r.Context(), jti, u.ID, expiresAt); err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       u.ID,
			"username": u.Username,
		},
	})
}

// POST /auth/logout — behind the middleware; revokes the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	jti, ok := TokenFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	if err := h.Sessions.Delete(r.Context(), jti); err != nil {
		http.Error(w, "Failed to end session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	u, err := h.Users.FindByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
	})
}
