package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rickar/cal/v2/be"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
)

type HolidayHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewHolidayHandler(cfg *config.Config, log *zap.Logger) *HolidayHandler {
	return &HolidayHandler{config: cfg, log: log}
}

// List returns the service's holidays for one year, ordered by date.
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "year invalide")
			return
		}
		year = parsed
	}

	var holidays []models.Holiday
	err := database.GetDB().
		Where("year = ? AND service_id = ?", year, gestionnaire.ServiceID).
		Order("date asc").
		Find(&holidays).Error
	if err != nil {
		h.log.Error("listing holidays failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, holidays)
}

type holidayRequest struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// Create adds one holiday. Admin only.
func (h *HolidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.IsAdmin() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	var req holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date invalide: format attendu AAAA-MM-JJ")
		return
	}

	holiday := models.Holiday{
		Date:      date,
		Label:     req.Label,
		Year:      date.Year(),
		ServiceID: gestionnaire.ServiceID,
	}
	if err := database.GetDB().Create(&holiday).Error; err != nil {
		h.log.Error("creating holiday failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusCreated, &holiday)
}

// Delete removes one holiday by id. Admin only.
func (h *HolidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.IsAdmin() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
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

	var holiday models.Holiday
	if err := database.GetDB().First(&holiday, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Jour férié non trouvé")
		return
	}

	if err := database.GetDB().Delete(&holiday).Error; err != nil {
		h.log.Error("deleting holiday failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Seed fills the year with the Belgian legal holidays. Existing entries on
// the same dates are left untouched, so an admin can re-run it safely after
// adding service-specific days.
func (h *HolidayHandler) Seed(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.IsAdmin() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondError(w, http.StatusBadRequest, "year invalide")
			return
		}
		year = parsed
	}

	created := 0
	for _, legal := range be.Holidays {
		actual, _ := legal.Calc(year)
		holiday := models.Holiday{
			Date:      time.Date(actual.Year(), actual.Month(), actual.Day(), 0, 0, 0, 0, time.UTC),
			Label:     legal.Name,
			Year:      year,
			ServiceID: gestionnaire.ServiceID,
		}

		result := database.GetDB().Clauses(clause.OnConflict{DoNothing: true}).Create(&holiday)
		if result.Error != nil {
			h.log.Error("seeding holiday failed", zap.Error(result.Error), zap.String("label", legal.Name))
			respondError(w, http.StatusInternalServerError, "Erreur serveur")
			return
		}
		created += int(result.RowsAffected)
	}

	respondJSON(w, http.StatusOK, map[string]int{"created": created, "year": year})
}
