package database

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"socialconnect/config"
	"socialconnect/models"
)

var DB *gorm.DB

// Init opens the PostgreSQL connection and prepares the schema.
func Init(cfg *config.Config, log *zap.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return err
	}
	return Bootstrap(db, cfg, log)
}

// Bootstrap migrates the schema on an already-open connection, seeds the
// default admin and installs the connection as the package database. Tests
// call it directly with an in-memory database.
func Bootstrap(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Gestionnaire{},
		&models.Prestation{},
		&models.SoldeConge{},
		&models.Holiday{},
		&models.HoraireHabituel{},
	)
	if err != nil {
		return err
	}

	DB = db

	return seedDefaultAdmin(cfg, log)
}

func seedDefaultAdmin(cfg *config.Config, log *zap.Logger) error {
	var count int64
	DB.Model(&models.Gestionnaire{}).Where("email = ?", cfg.AdminEmail).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Gestionnaire{
		Email:              cfg.AdminEmail,
		Prenom:             "Admin",
		Nom:                "SocialConnect",
		PasswordHash:       string(hashedPassword),
		Role:               models.RoleSuperAdmin,
		ServiceID:          cfg.ServiceID,
		MustChangePassword: true,
	}

	if result := DB.Create(&admin); result.Error != nil {
		return result.Error
	}

	if log != nil {
		log.Info("default admin created", zap.String("email", cfg.AdminEmail))
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
