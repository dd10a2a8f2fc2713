package admin

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"admob-switch/internal/models"
)

// Login checks credentials against admin_users and issues an HS256 token.
// Unknown username and wrong password are indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeValid(h, w, r, &req) {
		return
	}

	user, err := h.store.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}

	now := h.now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(h.tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": signed,
		"expires_in":   int(h.tokenTTL.Seconds()),
		"username":     user.Username,
		"role":         user.Role,
	})
}
