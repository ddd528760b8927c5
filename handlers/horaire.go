package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
	"socialconnect/prestation"
)

type HoraireHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewHoraireHandler(cfg *config.Config, log *zap.Logger) *HoraireHandler {
	return &HoraireHandler{config: cfg, log: log}
}

// Get returns the caller's usual schedule, falling back to the default
// 09:00-17:00 / 7h30 schedule when none has been saved.
func (h *HoraireHandler) Get(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var horaire models.HoraireHabituel
	err := database.GetDB().Where("gestionnaire_id = ?", gestionnaire.ID).First(&horaire).Error
	if err != nil {
		horaire = models.DefaultHoraire(gestionnaire.ID)
	}
	horaire.Normalize()

	respondJSON(w, http.StatusOK, &horaire)
}

type horaireRequest struct {
	Name             string `json:"name"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Pause            int    `json:"pause"`
	StandardDuration int    `json:"standardDuration"`
}

// Patch saves the caller's usual schedule. The 30-minute break floor is
// applied regardless of the submitted value.
func (h *HoraireHandler) Patch(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var req horaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	start, err := prestation.ParseTimeOfDay(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := prestation.ParseTimeOfDay(req.End)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end <= start {
		respondError(w, http.StatusBadRequest, prestation.ErrInvalidRange.Error())
		return
	}

	horaire := models.HoraireHabituel{
		GestionnaireID:   gestionnaire.ID,
		Name:             req.Name,
		Start:            start.String(),
		End:              end.String(),
		Pause:            req.Pause,
		StandardDuration: req.StandardDuration,
	}
	horaire.Normalize()

	err = database.GetDB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "gestionnaire_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "start", "end", "pause", "standard_duration", "updated_at",
		}),
	}).Create(&horaire).Error
	if err != nil {
		h.log.Error("saving horaire failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, &horaire)
}
