package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
	"socialconnect/prestation"
)

type PrestationHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewPrestationHandler(cfg *config.Config, log *zap.Logger) *PrestationHandler {
	return &PrestationHandler{config: cfg, log: log}
}

// List returns prestations visible to the caller. Admins see their whole
// service and may filter by gestionnaireId; everyone else sees their own.
// Optional startDate/endDate filters are inclusive calendar days.
func (h *PrestationHandler) List(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	db := database.GetDB()
	query := db.Preload("Gestionnaire")

	if gestionnaire.CanViewAllPrestations() {
		query = query.Where("prestations.service_id = ?", gestionnaire.ServiceID)
		if idStr := r.URL.Query().Get("gestionnaireId"); idStr != "" {
			id, err := uuid.Parse(idStr)
			if err != nil {
				respondError(w, http.StatusBadRequest, "gestionnaireId invalide")
				return
			}
			query = query.Where("gestionnaire_id = ?", id)
		}
	} else {
		query = query.Where("gestionnaire_id = ?", gestionnaire.ID)
	}

	if startStr := r.URL.Query().Get("startDate"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "startDate invalide")
			return
		}
		query = query.Where("date >= ?", start)
	}
	if endStr := r.URL.Query().Get("endDate"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "endDate invalide")
			return
		}
		query = query.Where("date < ?", end.AddDate(0, 0, 1))
	}

	var entries []models.Prestation
	if err := query.Order("date desc").Find(&entries).Error; err != nil {
		h.log.Error("listing prestations failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

type prestationRequest struct {
	Date           string `json:"date"`
	HeureDebut     string `json:"heureDebut"`
	HeureFin       string `json:"heureFin"`
	Pause          int    `json:"pause"`
	Motif          string `json:"motif"`
	Commentaire    string `json:"commentaire"`
	GestionnaireID string `json:"gestionnaireId"`
}

// Create records a new prestation. The breakdown is always recomputed
// server-side, and capped motifs are validated inside the same transaction
// that inserts the row so concurrent submissions cannot jointly break the
// annual cap or the no-consecutive-days rule.
func (h *PrestationHandler) Create(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}

	var req prestationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	ownerID := gestionnaire.ID
	if req.GestionnaireID != "" {
		parsed, err := uuid.Parse(req.GestionnaireID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "gestionnaireId invalide")
			return
		}
		ownerID = parsed
	}

	if !gestionnaire.CanManagePrestationsFor(ownerID) {
		respondError(w, http.StatusForbidden, "Accès refusé")
		return
	}

	entry, err := h.buildEntry(ownerID, gestionnaire.ServiceID, &req)
	if err != nil {
		respondBreakdownError(w, err)
		return
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := checkAdmission(tx, entry, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		respondAdmissionError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// Update corrects an existing prestation. Admin only; derived fields are
// recomputed from the corrected times. An edit that leaves start, end and
// break unchanged therefore yields the same dureeNet, isOvertime and bonis.
func (h *PrestationHandler) Update(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.IsAdmin() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	var req struct {
		ID string `json:"id"`
		prestationRequest
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

	var entry models.Prestation
	err = database.GetDB().
		First(&entry, "id = ? AND service_id = ?", id, gestionnaire.ServiceID).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Prestation non trouvée")
		return
	}

	updated, err := h.buildEntry(entry.GestionnaireID, entry.ServiceID, &req.prestationRequest)
	if err != nil {
		respondBreakdownError(w, err)
		return
	}

	entry.Date = updated.Date
	entry.HeureDebut = updated.HeureDebut
	entry.HeureFin = updated.HeureFin
	entry.Pause = updated.Pause
	entry.Motif = updated.Motif
	entry.Commentaire = updated.Commentaire
	entry.DureeNet = updated.DureeNet
	entry.IsOvertime = updated.IsOvertime
	entry.Bonis = updated.Bonis

	// A correction can retarget the date or motif, so capped motifs go
	// through the same admission rules as a fresh entry.
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := checkAdmission(tx, &entry, entry.ID); err != nil {
			return err
		}
		return tx.Save(&entry).Error
	})
	if err != nil {
		respondAdmissionError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, &entry)
}

// Delete removes a prestation. Owner or admin.
func (h *PrestationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
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

	var entry models.Prestation
	err = database.GetDB().
		First(&entry, "id = ? AND service_id = ?", id, gestionnaire.ServiceID).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Prestation non trouvée")
		return
	}

	if !gestionnaire.CanManagePrestationsFor(entry.GestionnaireID) {
		respondError(w, http.StatusForbidden, "Accès refusé")
		return
	}

	if err := database.GetDB().Delete(&entry).Error; err != nil {
		h.log.Error("deleting prestation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// buildEntry validates the submitted fields and derives the breakdown using
// the owner's usual schedule.
func (h *PrestationHandler) buildEntry(ownerID uuid.UUID, serviceID string, req *prestationRequest) (*models.Prestation, error) {
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, errors.New("date invalide: format attendu AAAA-MM-JJ")
	}

	start, err := prestation.ParseTimeOfDay(req.HeureDebut)
	if err != nil {
		return nil, err
	}
	end, err := prestation.ParseTimeOfDay(req.HeureFin)
	if err != nil {
		return nil, err
	}
	if req.Pause < 0 {
		return nil, errors.New("la pause ne peut pas être négative")
	}
	if req.Motif == "" {
		return nil, errors.New("motif manquant")
	}

	standardDuration := prestation.StandardDayMinutes
	var horaire models.HoraireHabituel
	if err := database.GetDB().Where("gestionnaire_id = ?", ownerID).First(&horaire).Error; err == nil {
		horaire.Normalize()
		standardDuration = horaire.StandardDuration
	}

	pause := prestation.FloorBreak(req.Pause)
	breakdown, err := prestation.ComputeBreakdown(start, end, pause, standardDuration)
	if err != nil {
		return nil, err
	}

	return &models.Prestation{
		GestionnaireID: ownerID,
		ServiceID:      serviceID,
		Date:           date,
		HeureDebut:     start.String(),
		HeureFin:       end.String(),
		Pause:          pause,
		Motif:          req.Motif,
		Commentaire:    req.Commentaire,
		DureeNet:       breakdown.TotalMinutes,
		IsOvertime:     breakdown.Overtime,
		Bonis:          breakdown.BonusMinutes,
	}, nil
}

// checkAdmission applies capped-motif rules against the rows already
// persisted for the owner and year. excludeID skips the entry being
// corrected so an edit does not collide with itself.
func checkAdmission(tx *gorm.DB, entry *models.Prestation, excludeID uuid.UUID) error {
	if entry.Motif != prestation.MotifJourSansCertificat {
		return nil
	}

	// Locking the rows read below cannot cover a competing insert that is
	// not yet visible. The no-op update takes a write lock on the owner's
	// row until commit, so admissions for one gestionnaire run one at a
	// time and each re-reads after the previous one committed.
	err := tx.Exec("UPDATE gestionnaires SET id = id WHERE id = ?", entry.GestionnaireID).Error
	if err != nil {
		return err
	}

	yearStart, yearEnd := prestation.YearWindow(entry.Date.Year())

	q := tx.Where("gestionnaire_id = ? AND motif = ? AND date >= ? AND date < ?",
		entry.GestionnaireID, entry.Motif, yearStart, yearEnd)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var existing []models.Prestation
	if err := q.Find(&existing).Error; err != nil {
		return err
	}

	dates := make([]time.Time, 0, len(existing))
	for _, e := range existing {
		dates = append(dates, e.Date)
	}

	return prestation.CheckNoCertificate(entry.Date, dates)
}

func respondBreakdownError(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, err.Error())
}

func respondAdmissionError(w http.ResponseWriter, log *zap.Logger, err error) {
	var quotaErr *prestation.QuotaExceededError
	var adjErr *prestation.AdjacencyError
	switch {
	case errors.As(err, &quotaErr):
		respondError(w, http.StatusConflict, quotaErr.Error())
	case errors.As(err, &adjErr):
		respondError(w, http.StatusConflict, adjErr.Error())
	default:
		log.Error("saving prestation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
	}
}
