package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
)

type AuthHandler struct {
	config *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	var gestionnaire models.Gestionnaire
	if err := database.GetDB().Where("email = ?", req.Email).First(&gestionnaire).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(gestionnaire.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	token, err := middleware.GenerateToken(&gestionnaire, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":                token,
		"gestionnaire":         &gestionnaire,
		"must_change_password": gestionnaire.MustChangePassword,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(gestionnaire.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		respondError(w, http.StatusBadRequest, "Mot de passe actuel incorrect")
		return
	}

	if len(req.NewPassword) < 8 {
		respondError(w, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	gestionnaire.PasswordHash = string(hashedPassword)
	gestionnaire.MustChangePassword = false
	if err := database.GetDB().Save(gestionnaire).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	token, err := middleware.GenerateToken(gestionnaire, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
