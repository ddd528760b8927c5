package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
	"socialconnect/prestation"
)

type SoldeHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewSoldeHandler(cfg *config.Config, log *zap.Logger) *SoldeHandler {
	return &SoldeHandler{config: cfg, log: log}
}

// Balance computes the leave balance for one gestionnaire and year. A
// gestionnaire may only query their own balance; admins may query anyone in
// their service. A missing quota record yields all-zero quotas, so the
// remaining values are simply the negated consumption.
func (h *SoldeHandler) Balance(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	annee := time.Now().UTC().Year()
	if anneeStr := r.URL.Query().Get("annee"); anneeStr != "" {
		parsed, err := strconv.Atoi(anneeStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondError(w, http.StatusBadRequest, "annee invalide")
			return
		}
		annee = parsed
	}

	targetID := gestionnaire.ID
	if idStr := r.URL.Query().Get("gestionnaireId"); idStr != "" {
		parsed, err := uuid.Parse(idStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "gestionnaireId invalide")
			return
		}
		targetID = parsed
	}

	if targetID != gestionnaire.ID && !gestionnaire.IsAdmin() {
		respondError(w, http.StatusForbidden, "Accès refusé")
		return
	}

	db := database.GetDB()

	if targetID != gestionnaire.ID {
		var target models.Gestionnaire
		if err := db.Where("id = ? AND service_id = ?", targetID, gestionnaire.ServiceID).First(&target).Error; err != nil {
			respondError(w, http.StatusNotFound, "Gestionnaire non trouvé")
			return
		}
	}

	var solde models.SoldeConge
	quota := prestation.Quota{}
	if err := db.Where("gestionnaire_id = ? AND annee = ?", targetID, annee).First(&solde).Error; err == nil {
		quota = solde.Quota()
	}

	yearStart, yearEnd := prestation.YearWindow(annee)
	var rows []models.Prestation
	err := db.Select("date", "motif", "duree_net").
		Where("gestionnaire_id = ? AND date >= ? AND date < ?", targetID, yearStart, yearEnd).
		Find(&rows).Error
	if err != nil {
		h.log.Error("fetching prestations for balance failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	entries := make([]prestation.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, prestation.Entry{
			Date:       row.Date,
			Motif:      row.Motif,
			NetMinutes: row.DureeNet,
		})
	}

	respondJSON(w, http.StatusOK, prestation.ComputeBalance(annee, quota, entries))
}

type soldeRequest struct {
	GestionnaireID        string `json:"gestionnaireId"`
	Annee                 int    `json:"annee"`
	VacancesAnnuelles     int    `json:"vacancesAnnuelles"`
	ConsultationMedicale  int    `json:"consultationMedicale"`
	ForceMajeure          int    `json:"forceMajeure"`
	CongesReglementaires  int    `json:"congesReglementaires"`
	CreditHeures          int    `json:"creditHeures"`
	HeuresSupplementaires int    `json:"heuresSupplementaires"`
}

// Upsert creates or fully replaces the quota record for one (gestionnaire,
// annee). Admin only; every field is overwritten, never merged.
func (h *SoldeHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.CanManageQuotas() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	var req soldeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	targetID, err := uuid.Parse(req.GestionnaireID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "gestionnaireId invalide")
		return
	}
	if req.Annee < 2000 || req.Annee > 2100 {
		respondError(w, http.StatusBadRequest, "annee invalide")
		return
	}

	solde := models.SoldeConge{
		GestionnaireID:        targetID,
		Annee:                 req.Annee,
		ServiceID:             gestionnaire.ServiceID,
		VacancesAnnuelles:     req.VacancesAnnuelles,
		ConsultationMedicale:  req.ConsultationMedicale,
		ForceMajeure:          req.ForceMajeure,
		CongesReglementaires:  req.CongesReglementaires,
		CreditHeures:          req.CreditHeures,
		HeuresSupplementaires: req.HeuresSupplementaires,
	}

	// Create-or-replace on the (gestionnaire, annee) unique index; the
	// index also keeps concurrent upserts from creating duplicates.
	err = database.GetDB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "gestionnaire_id"}, {Name: "annee"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vacances_annuelles", "consultation_medicale", "force_majeure",
			"conges_reglementaires", "credit_heures", "heures_supplementaires",
			"updated_at",
		}),
	}).Create(&solde).Error
	if err != nil {
		h.log.Error("upserting solde failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	var saved models.SoldeConge
	if err := database.GetDB().Where("gestionnaire_id = ? AND annee = ?", targetID, req.Annee).First(&saved).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, &saved)
}
