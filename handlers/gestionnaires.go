package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
)

type GestionnaireHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewGestionnaireHandler(cfg *config.Config, log *zap.Logger) *GestionnaireHandler {
	return &GestionnaireHandler{config: cfg, log: log}
}

// List returns the staff accounts of the caller's service. Admin only
// (enforced by the route group).
func (h *GestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var staff []models.Gestionnaire
	err := database.GetDB().
		Where("service_id = ?", gestionnaire.ServiceID).
		Order("prenom asc").
		Find(&staff).Error
	if err != nil {
		h.log.Error("listing gestionnaires failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

type gestionnaireRequest struct {
	Email            string      `json:"email"`
	Prenom           string      `json:"prenom"`
	Nom              string      `json:"nom"`
	Role             models.Role `json:"role"`
	Password         string      `json:"password"`
	CouleurMedaillon string      `json:"couleur_medaillon"`
}

func validRole(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleGestionnaire
}

// Create provisions a new staff account with a temporary password; the
// account must change it on first login.
func (h *GestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetGestionnaireFromContext(r.Context())
	if caller == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var req gestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	if req.Email == "" || req.Prenom == "" || req.Nom == "" {
		respondError(w, http.StatusBadRequest, "email, prenom et nom sont obligatoires")
		return
	}
	if !validRole(req.Role) {
		respondError(w, http.StatusBadRequest, "role invalide")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
		return
	}

	var existing models.Gestionnaire
	if err := database.GetDB().Where("email = ?", req.Email).First(&existing).Error; err == nil {
		respondError(w, http.StatusConflict, "Un compte existe déjà avec cet email")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	account := models.Gestionnaire{
		Email:              req.Email,
		Prenom:             req.Prenom,
		Nom:                req.Nom,
		PasswordHash:       string(hashedPassword),
		Role:               req.Role,
		ServiceID:          caller.ServiceID,
		CouleurMedaillon:   req.CouleurMedaillon,
		MustChangePassword: true,
	}

	if err := database.GetDB().Create(&account).Error; err != nil {
		h.log.Error("creating gestionnaire failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusCreated, &account)
}

// Update edits a staff account's identity fields and role.
func (h *GestionnaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetGestionnaireFromContext(r.Context())
	if caller == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var req struct {
		ID string `json:"id"`
		gestionnaireRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID invalide")
		return
	}

	var account models.Gestionnaire
	if err := database.GetDB().Where("id = ? AND service_id = ?", id, caller.ServiceID).First(&account).Error; err != nil {
		respondError(w, http.StatusNotFound, "Gestionnaire non trouvé")
		return
	}

	if req.Email != "" {
		account.Email = req.Email
	}
	if req.Prenom != "" {
		account.Prenom = req.Prenom
	}
	if req.Nom != "" {
		account.Nom = req.Nom
	}
	if req.CouleurMedaillon != "" {
		account.CouleurMedaillon = req.CouleurMedaillon
	}
	if req.Role != "" {
		if !validRole(req.Role) {
			respondError(w, http.StatusBadRequest, "role invalide")
			return
		}
		account.Role = req.Role
	}

	if err := database.GetDB().Save(&account).Error; err != nil {
		h.log.Error("updating gestionnaire failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, &account)
}

// Delete soft-deletes a staff account. Self-deletion is refused.
func (h *GestionnaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetGestionnaireFromContext(r.Context())
	if caller == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		respondError(w, http.StatusBadRequest, "ID manquant")
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "ID invalide")
		return
	}
	if id == caller.ID {
		respondError(w, http.StatusBadRequest, "Impossible de supprimer son propre compte")
		return
	}

	var account models.Gestionnaire
	if err := database.GetDB().Where("id = ? AND service_id = ?", id, caller.ServiceID).First(&account).Error; err != nil {
		respondError(w, http.StatusNotFound, "Gestionnaire non trouvé")
		return
	}

	if err := database.GetDB().Delete(&account).Error; err != nil {
		h.log.Error("deleting gestionnaire failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
