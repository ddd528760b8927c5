package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialconnect/database"
	"socialconnect/models"
	"socialconnect/prestation"
)

func newSoldeHandler(t *testing.T) *SoldeHandler {
	cfg := setupDB(t)
	return NewSoldeHandler(cfg, zap.NewNop())
}

func storePrestation(t *testing.T, g *models.Gestionnaire, date time.Time, motif string, netMinutes int) {
	t.Helper()
	entry := models.Prestation{
		GestionnaireID: g.ID,
		ServiceID:      g.ServiceID,
		Date:           date,
		HeureDebut:     "09:00",
		HeureFin:       "17:00",
		Pause:          30,
		Motif:          motif,
		DureeNet:       netMinutes,
	}
	require.NoError(t, database.GetDB().Create(&entry).Error)
}

func TestBalance_SumsAndRemaining(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	solde := models.SoldeConge{
		GestionnaireID:    staff.ID,
		Annee:             2025,
		ServiceID:         staff.ServiceID,
		VacancesAnnuelles: 1000,
	}
	require.NoError(t, database.GetDB().Create(&solde).Error)

	storePrestation(t, staff, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), prestation.MotifCongeVA, 480)
	storePrestation(t, staff, time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC), prestation.MotifCongeVA, 240)
	storePrestation(t, staff, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), prestation.MotifMaladie, 450)

	rec := doJSON(t, h.Balance, http.MethodGet, "/api/prestations/soldes?annee=2025", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var balance prestation.Balance
	decodeBody(t, rec, &balance)
	assert.Equal(t, 1000, balance.Quotas.VacancesAnnuelles)
	assert.Equal(t, 720, balance.Consomme.VacancesAnnuelles)
	assert.Equal(t, 280, balance.Restant.VacancesAnnuelles)
	assert.Equal(t, 450, balance.Consomme.Maladie)
}

func TestBalance_MissingQuotaDefaultsToZero(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	storePrestation(t, staff, time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), prestation.MotifCongeCH, 450)

	rec := doJSON(t, h.Balance, http.MethodGet, "/api/prestations/soldes?annee=2025", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var balance prestation.Balance
	decodeBody(t, rec, &balance)
	assert.Equal(t, prestation.Quota{}, balance.Quotas)
	assert.Equal(t, -450, balance.Restant.CreditHeures)
}

func TestBalance_OthersForbiddenForNonAdmin(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	other := createStaff(t, "paul@test.local", models.RoleGestionnaire)

	target := fmt.Sprintf("/api/prestations/soldes?annee=2025&gestionnaireId=%s", other.ID)
	rec := doJSON(t, h.Balance, http.MethodGet, target, staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h.Balance, http.MethodGet, target, seededAdmin(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpsert_AdminOnly(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Upsert, http.MethodPost, "/api/prestations/soldes", staff, map[string]interface{}{
		"gestionnaireId":    staff.ID.String(),
		"annee":             2025,
		"vacancesAnnuelles": 1000,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpsert_CreateThenReplace(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	admin := seededAdmin(t)

	rec := doJSON(t, h.Upsert, http.MethodPost, "/api/prestations/soldes", admin, map[string]interface{}{
		"gestionnaireId":       staff.ID.String(),
		"annee":                2025,
		"vacancesAnnuelles":    1000,
		"consultationMedicale": 300,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Full replace: omitted categories reset to zero.
	rec = doJSON(t, h.Upsert, http.MethodPost, "/api/prestations/soldes", admin, map[string]interface{}{
		"gestionnaireId":    staff.ID.String(),
		"annee":             2025,
		"vacancesAnnuelles": 1200,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved models.SoldeConge
	decodeBody(t, rec, &saved)
	assert.Equal(t, 1200, saved.VacancesAnnuelles)
	assert.Equal(t, 0, saved.ConsultationMedicale)

	// Still a single record per (gestionnaire, annee).
	var count int64
	database.GetDB().Model(&models.SoldeConge{}).
		Where("gestionnaire_id = ? AND annee = ?", staff.ID, 2025).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBalance_ScopedToService(t *testing.T) {
	h := newSoldeHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	foreignAdmin := createStaffIn(t, "chef@autre.local", "autre-service", models.RoleAdmin)

	target := fmt.Sprintf("/api/prestations/soldes?annee=2025&gestionnaireId=%s", staff.ID)
	rec := doJSON(t, h.Balance, http.MethodGet, target, foreignAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Admins of the same service still see it.
	rec = doJSON(t, h.Balance, http.MethodGet, target, seededAdmin(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
