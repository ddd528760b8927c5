package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
	"socialconnect/prestation"
)

func newPrestationHandler(t *testing.T) *PrestationHandler {
	cfg := setupDB(t)
	return NewPrestationHandler(cfg, zap.NewNop())
}

func TestPrestationCreate_ComputesBreakdown(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-06-02",
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      30,
		"motif":      prestation.MotifPresence,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var entry models.Prestation
	decodeBody(t, rec, &entry)
	assert.Equal(t, 450, entry.DureeNet)
	assert.Equal(t, 0, entry.Bonis)
	assert.False(t, entry.IsOvertime)
	assert.Equal(t, staff.ID, entry.GestionnaireID)
}

func TestPrestationCreate_FloorsBreak(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-06-02",
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      0,
		"motif":      prestation.MotifPresence,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var entry models.Prestation
	decodeBody(t, rec, &entry)
	assert.Equal(t, 30, entry.Pause)
	assert.Equal(t, 450, entry.DureeNet)
}

func TestPrestationCreate_OvertimeAtCutoff(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-06-02",
		"heureDebut": "14:00",
		"heureFin":   "19:00",
		"pause":      30,
		"motif":      prestation.MotifPresence,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry models.Prestation
	decodeBody(t, rec, &entry)
	assert.True(t, entry.IsOvertime)
}

func TestPrestationCreate_InvalidRange(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-06-02",
		"heureDebut": "17:00",
		"heureFin":   "09:00",
		"pause":      30,
		"motif":      prestation.MotifPresence,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrestationCreate_UsesPersonalSchedule(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	// 6h standard day instead of 7h30.
	horaire := models.HoraireHabituel{
		GestionnaireID:   staff.ID,
		Start:            "09:00",
		End:              "15:30",
		Pause:            30,
		StandardDuration: 360,
	}
	require.NoError(t, database.GetDB().Create(&horaire).Error)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-06-02",
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      30,
		"motif":      prestation.MotifPresence,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry models.Prestation
	decodeBody(t, rec, &entry)
	assert.Equal(t, 450, entry.DureeNet)
	assert.Equal(t, 90, entry.Bonis)
}

func TestPrestationCreate_ForOtherRequiresAdmin(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	other := createStaff(t, "paul@test.local", models.RoleGestionnaire)

	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":           "2025-06-02",
		"heureDebut":     "09:00",
		"heureFin":       "17:00",
		"pause":          30,
		"motif":          prestation.MotifPresence,
		"gestionnaireId": other.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := seededAdmin(t)
	rec = doJSON(t, h.Create, http.MethodPost, "/api/prestations", admin, map[string]interface{}{
		"date":           "2025-06-02",
		"heureDebut":     "09:00",
		"heureFin":       "17:00",
		"pause":          30,
		"motif":          prestation.MotifPresence,
		"gestionnaireId": other.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry models.Prestation
	decodeBody(t, rec, &entry)
	assert.Equal(t, other.ID, entry.GestionnaireID)
}

func postNoCertDay(t *testing.T, h *PrestationHandler, g *models.Gestionnaire, date string) *models.Prestation {
	t.Helper()
	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", g, map[string]interface{}{
		"date":       date,
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      30,
		"motif":      prestation.MotifJourSansCertificat,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry models.Prestation
	decodeBody(t, rec, &entry)
	return &entry
}

func TestPrestationCreate_NoCertificateCap(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	postNoCertDay(t, h, staff, "2025-02-03")
	postNoCertDay(t, h, staff, "2025-04-22")
	postNoCertDay(t, h, staff, "2025-06-10")

	// Fourth day of the same year is rejected.
	rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2025-08-04",
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      30,
		"motif":      prestation.MotifJourSansCertificat,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A new year starts a new count.
	rec = doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
		"date":       "2026-01-15",
		"heureDebut": "09:00",
		"heureFin":   "17:00",
		"pause":      30,
		"motif":      prestation.MotifJourSansCertificat,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPrestationCreate_NoCertificateAdjacency(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	postNoCertDay(t, h, staff, "2025-06-10")

	for _, date := range []string{"2025-06-11", "2025-06-09"} {
		rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
			"date":       date,
			"heureDebut": "09:00",
			"heureFin":   "17:00",
			"pause":      30,
			"motif":      prestation.MotifJourSansCertificat,
		})
		assert.Equal(t, http.StatusConflict, rec.Code, date)
	}

	postNoCertDay(t, h, staff, "2025-06-12")
}

func TestPrestationUpdate_AdminOnlyAndIdempotentRecompute(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	admin := seededAdmin(t)

	created := postNoCertDay(t, h, staff, "2025-06-10")

	body := map[string]interface{}{
		"id":          created.ID.String(),
		"date":        "2025-06-10",
		"heureDebut":  created.HeureDebut,
		"heureFin":    created.HeureFin,
		"pause":       created.Pause,
		"motif":       created.Motif,
		"commentaire": "corrigé",
	}

	// Owners cannot edit, even their own entries.
	rec := doJSON(t, h.Update, http.MethodPut, "/api/prestations", staff, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin edit with unchanged times keeps the derived fields identical.
	rec = doJSON(t, h.Update, http.MethodPut, "/api/prestations", admin, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Prestation
	decodeBody(t, rec, &updated)
	assert.Equal(t, created.DureeNet, updated.DureeNet)
	assert.Equal(t, created.IsOvertime, updated.IsOvertime)
	assert.Equal(t, created.Bonis, updated.Bonis)
	assert.Equal(t, "corrigé", updated.Commentaire)
}

func TestPrestationDelete(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	other := createStaff(t, "paul@test.local", models.RoleGestionnaire)

	created := postNoCertDay(t, h, staff, "2025-06-10")
	target := fmt.Sprintf("/api/prestations?id=%s", created.ID)

	rec := doJSON(t, h.Delete, http.MethodDelete, target, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h.Delete, http.MethodDelete, target, staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deleting again reports not found.
	rec = doJSON(t, h.Delete, http.MethodDelete, target, staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrestationList_ScopedToOwner(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	other := createStaff(t, "paul@test.local", models.RoleGestionnaire)

	postNoCertDay(t, h, staff, "2025-06-10")
	postNoCertDay(t, h, other, "2025-06-10")

	rec := doJSON(t, h.List, http.MethodGet, "/api/prestations", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.Prestation
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, staff.ID, entries[0].GestionnaireID)

	// Admins see the whole service.
	rec = doJSON(t, h.List, http.MethodGet, "/api/prestations", seededAdmin(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &entries)
	assert.Len(t, entries, 2)
}

func TestPrestationCreate_NoCertificateConcurrentAdjacentDays(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	pairs := [][2]string{
		{"2025-06-10", "2025-06-11"},
		{"2026-03-02", "2026-03-03"},
		{"2027-09-21", "2027-09-22"},
		{"2028-01-12", "2028-01-13"},
	}

	for _, pair := range pairs {
		codes := make(chan int, len(pair))
		var wg sync.WaitGroup
		for _, date := range pair {
			raw, err := json.Marshal(map[string]interface{}{
				"date":       date,
				"heureDebut": "09:00",
				"heureFin":   "17:00",
				"pause":      30,
				"motif":      prestation.MotifJourSansCertificat,
			})
			require.NoError(t, err)

			wg.Add(1)
			go func(body []byte) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPost, "/api/prestations", bytes.NewReader(body))
				ctx := context.WithValue(req.Context(), middleware.GestionnaireContextKey, staff)
				rec := httptest.NewRecorder()
				h.Create(rec, req.WithContext(ctx))
				codes <- rec.Code
			}(raw)
		}
		wg.Wait()
		close(codes)

		created := 0
		for code := range codes {
			if code == http.StatusCreated {
				created++
			}
		}
		assert.LessOrEqual(t, created, 1, "%s / %s", pair[0], pair[1])
	}
}

func TestPrestationUpdate_ScopedToService(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	foreignAdmin := createStaffIn(t, "chef@autre.local", "autre-service", models.RoleAdmin)

	created := postNoCertDay(t, h, staff, "2025-06-10")

	rec := doJSON(t, h.Update, http.MethodPut, "/api/prestations", foreignAdmin, map[string]interface{}{
		"id":         created.ID.String(),
		"date":       "2025-06-10",
		"heureDebut": "10:00",
		"heureFin":   "18:00",
		"pause":      30,
		"motif":      created.Motif,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var unchanged models.Prestation
	require.NoError(t, database.GetDB().First(&unchanged, "id = ?", created.ID).Error)
	assert.Equal(t, created.HeureDebut, unchanged.HeureDebut)
}

func TestPrestationDelete_ScopedToService(t *testing.T) {
	h := newPrestationHandler(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)
	foreignAdmin := createStaffIn(t, "chef@autre.local", "autre-service", models.RoleAdmin)

	created := postNoCertDay(t, h, staff, "2025-06-10")

	target := fmt.Sprintf("/api/prestations?id=%s", created.ID)
	rec := doJSON(t, h.Delete, http.MethodDelete, target, foreignAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var count int64
	database.GetDB().Model(&models.Prestation{}).Where("id = ?", created.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestPrestationUpdate_AppliesNoCertificateRules(t *testing.T) {
	h := newPrestationHandler(t)
	admin := seededAdmin(t)
	staff := createStaff(t, "marie@test.local", models.RoleGestionnaire)

	postNoCertDay(t, h, staff, "2025-06-10")

	newPresence := func(date string) *models.Prestation {
		rec := doJSON(t, h.Create, http.MethodPost, "/api/prestations", staff, map[string]interface{}{
			"date":       date,
			"heureDebut": "09:00",
			"heureFin":   "17:00",
			"pause":      30,
			"motif":      prestation.MotifPresence,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var entry models.Prestation
		decodeBody(t, rec, &entry)
		return &entry
	}
	retarget := func(entry *models.Prestation, date string) *httptest.ResponseRecorder {
		return doJSON(t, h.Update, http.MethodPut, "/api/prestations", admin, map[string]interface{}{
			"id":         entry.ID.String(),
			"date":       date,
			"heureDebut": "09:00",
			"heureFin":   "17:00",
			"pause":      30,
			"motif":      prestation.MotifJourSansCertificat,
		})
	}

	// Retargeting onto the day after an existing entry is refused.
	other := newPresence("2025-07-01")
	rec := retarget(other, "2025-06-11")
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// A detached day is admitted.
	rec = retarget(other, "2025-06-13")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Third day fills the annual cap; a correction cannot add a fourth.
	postNoCertDay(t, h, staff, "2025-09-01")
	fourth := newPresence("2025-11-05")
	rec = retarget(fourth, "2025-11-05")
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// Editing a capped entry in place does not collide with itself.
	rec = retarget(other, "2025-06-13")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
