package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:   "test",
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		ServerPort:    "0",
		ServiceID:     "default",
		AdminEmail:    "admin@test.local",
		AdminPassword: "admin-password",
	}
}

// setupDB bootstraps an in-memory database, isolated per test.
func setupDB(t *testing.T) *config.Config {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	cfg := testConfig()
	require.NoError(t, database.Bootstrap(db, cfg, zap.NewNop()))
	return cfg
}

func seededAdmin(t *testing.T) *models.Gestionnaire {
	t.Helper()
	var admin models.Gestionnaire
	require.NoError(t, database.GetDB().Where("email = ?", "admin@test.local").First(&admin).Error)
	return &admin
}

func createStaff(t *testing.T, email string, role models.Role) *models.Gestionnaire {
	t.Helper()
	return createStaffIn(t, email, "default", role)
}

func createStaffIn(t *testing.T, email, serviceID string, role models.Role) *models.Gestionnaire {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password-1"), bcrypt.MinCost)
	require.NoError(t, err)

	g := models.Gestionnaire{
		Email:        email,
		Prenom:       "Test",
		Nom:          strings.Split(email, "@")[0],
		PasswordHash: string(hash),
		Role:         role,
		ServiceID:    serviceID,
	}
	require.NoError(t, database.GetDB().Create(&g).Error)
	return &g
}

// doJSON runs a handler with the gestionnaire injected the way the auth
// middleware would.
func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, g *models.Gestionnaire, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if g != nil {
		ctx := context.WithValue(req.Context(), middleware.GestionnaireContextKey, g)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
