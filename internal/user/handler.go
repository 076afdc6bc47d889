package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/earnings-tracker/api/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Repository: NewRepository(db)}
}

type registerDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if _, err := h.Repository.FindByUsername(r.Context(), in.Username); err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	u := User{Username: in.Username, Password: hash}
	if err := h.Repository.Create(r.Context(), &u); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
	})
}
