package api

import (
	"net/http"
	"toycatalog_server/api/health"
	"toycatalog_server/api/items"
	"toycatalog_server/api/middleware"
	"toycatalog_server/config"
	"toycatalog_server/database"
	"toycatalog_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

func App() (chi.Router, error) {
	r := chi.NewRouter()

	// create loggers
	logLevel := gecho.ParseLogLevel(config.GetLogLevel())
	mwLogger := gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(false), gecho.WithLogLevel(logLevel)))
	standardLogger := gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(true), gecho.WithLogLevel(logLevel)))

	// db
	db := database.GetInstance()

	// config
	cfg := config.GetConfig()

	// services
	sm, err := services.NewServiceManager(standardLogger, cfg, db)
	if err != nil {
		return nil, err
	}

	// Initialize middleware
	mw := middleware.NewMiddleware()

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(cfg.Storage.MaxUploadBytes))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(gecho.Handlers.CreateLoggingMiddleware(mwLogger))
	r.Use(middleware.MetricsMiddleware)

	// CORS
	r.Use(mw.SetupCORS().Handler)

	// Register all routes
	itemRoutes := items.NewItemRoutesManager(standardLogger, sm.ItemService, sm.ImportService, sm.ExportService)
	healthRoutes := health.NewHealthRoutesManager(sm.HealthService)
	NewRouterManager(itemRoutes, healthRoutes).RegisterRoutes(r)

	// Processed item images, served directly from the upload directory
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(sm.UploadDir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage("Welcome to the ToyCatalog API"),
			gecho.Send(),
		)
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r, nil
}
