package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/handlers"
	"socialconnect/logger"
	"socialconnect/middleware"
	"socialconnect/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg, log); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	authHandler := handlers.NewAuthHandler(cfg)
	prestationHandler := handlers.NewPrestationHandler(cfg, log.Named("prestations"))
	soldeHandler := handlers.NewSoldeHandler(cfg, log.Named("soldes"))
	horaireHandler := handlers.NewHoraireHandler(cfg, log.Named("horaire"))
	holidayHandler := handlers.NewHolidayHandler(cfg, log.Named("holidays"))
	exportHandler := handlers.NewExportHandler(cfg, log.Named("export"))
	gestionnaireHandler := handlers.NewGestionnaireHandler(cfg, log.Named("gestionnaires"))

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Post("/api/auth/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Post("/api/auth/change-password", authHandler.ChangePassword)

		r.Get("/api/prestations", prestationHandler.List)
		r.Post("/api/prestations", prestationHandler.Create)
		r.Delete("/api/prestations", prestationHandler.Delete)

		r.Get("/api/prestations/soldes", soldeHandler.Balance)
		r.Get("/api/prestations/config", horaireHandler.Get)
		r.Patch("/api/prestations/config", horaireHandler.Patch)
		r.Get("/api/prestations/holidays", holidayHandler.List)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))

			r.Put("/api/prestations", prestationHandler.Update)
			r.Post("/api/prestations/soldes", soldeHandler.Upsert)
			r.Post("/api/prestations/holidays", holidayHandler.Create)
			r.Delete("/api/prestations/holidays", holidayHandler.Delete)
			r.Post("/api/prestations/holidays/seed", holidayHandler.Seed)
			r.Get("/api/prestations/export", exportHandler.CSV)
			r.Get("/api/prestations/export-official", exportHandler.Official)

			r.Get("/api/gestionnaires", gestionnaireHandler.List)
			r.Post("/api/gestionnaires", gestionnaireHandler.Create)
			r.Put("/api/gestionnaires", gestionnaireHandler.Update)
			r.Delete("/api/gestionnaires", gestionnaireHandler.Delete)
		})
	})

	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
