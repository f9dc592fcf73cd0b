package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/homekeep-app/homekeep/internal/backup"
	"github.com/homekeep-app/homekeep/internal/budget"
	"github.com/homekeep-app/homekeep/internal/config"
	"github.com/homekeep-app/homekeep/internal/email"
	"github.com/homekeep-app/homekeep/internal/enrich"
	"github.com/homekeep-app/homekeep/internal/handler"
	"github.com/homekeep-app/homekeep/internal/middleware"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/push"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/upload"
	"github.com/homekeep-app/homekeep/internal/warranty"
	ws "github.com/homekeep-app/homekeep/internal/websocket"
)

type Server struct {
	db  *sql.DB
	cfg *config.Config
	hub *ws.Hub

	meH          *handler.MeHandler
	homeH        *handler.HomeHandler
	inventoryH   *handler.InventoryHandler
	maintenanceH *handler.MaintenanceHandler
	taskH        *handler.TaskHandler
	budgetH      *handler.BudgetHandler
	projectH     *handler.ProjectHandler
	pushH        *handler.PushHandler
	warrantyH    *handler.WarrantyHandler
	uploadH      *handler.UploadHandler
	lookupH      *handler.LookupHandler
	backupH      *handler.BackupHandler

	verifier    *middleware.Verifier
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	homeStore := store.NewHomeStore(db)
	inventoryStore := store.NewInventoryStore(db)
	maintenanceStore := store.NewMaintenanceStore(db)
	taskStore := store.NewTaskStore(db)
	budgetStore := store.NewBudgetStore(db)
	projectStore := store.NewProjectStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	pushSvc := push.NewService(push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.PushSubscriber,
	})
	mailer := email.NewService(email.Config{
		Domain:      cfg.MailgunDomain,
		APIKey:      cfg.MailgunAPIKey,
		SenderEmail: cfg.MailgunSenderEmail,
		SenderName:  cfg.MailgunSenderName,
	})

	evaluator := budget.NewEvaluator(budgetStore, projectStore, taskStore, homeStore, userStore, pushStore,
		pushSvc, mailer, hub, logger.With("component", "budget_alerts"))
	scanner := warranty.NewScanner(userStore, inventoryStore, pushStore, pushSvc, mailer,
		logger.With("component", "warranty_scan"))

	// Upload backends in preference order: S3 first when configured, then
	// local disk. Process falls back to an inline data URL if both fail.
	var backends []upload.Backend
	if s3b := upload.NewS3Backend(upload.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}); s3b != nil {
		backends = append(backends, s3b)
	}
	if cfg.UploadDir != "" {
		backends = append(backends, &upload.DiskBackend{Dir: cfg.UploadDir, URLBase: cfg.UploadURLBase})
	}
	uploadSvc := upload.NewService(logger.With("component", "upload"), backends...)

	climateSvc := enrich.NewClimateService()
	var providers []enrich.PropertyProvider
	if p := enrich.NewRapidAPIProvider(cfg.RapidAPIKey); p != nil {
		providers = append(providers, p)
	}
	providers = append(providers, enrich.NewScrapeProvider(enrich.NewScraper(cfg.ScrapingEnabled)))
	propertySvc := enrich.NewPropertyService(logger.With("component", "property"), providers...)

	backupSvc := backup.NewService(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		Bucket:     cfg.BackupBucket,
		Passphrase: cfg.BackupPassphrase,
		DBPath:     cfg.DBPath,
	}, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:  db,
		cfg: cfg,
		hub: hub,

		meH:          handler.NewMeHandler(userStore),
		homeH:        handler.NewHomeHandler(homeStore, hub, logger.With("component", "home")),
		inventoryH:   handler.NewInventoryHandler(inventoryStore, homeStore, hub, logger.With("component", "inventory")),
		maintenanceH: handler.NewMaintenanceHandler(maintenanceStore, homeStore, inventoryStore, logger.With("component", "maintenance")),
		taskH:        handler.NewTaskHandler(taskStore, homeStore, hub, logger.With("component", "task")),
		budgetH:      handler.NewBudgetHandler(budgetStore, homeStore, evaluator, hub, logger.With("component", "budget")),
		projectH:     handler.NewProjectHandler(projectStore, homeStore, hub, logger.With("component", "project")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		warrantyH:    handler.NewWarrantyHandler(scanner, logger.With("component", "warranty")),
		uploadH:      handler.NewUploadHandler(uploadSvc, logger.With("component", "upload")),
		lookupH:      handler.NewLookupHandler(climateSvc, propertySvc, logger.With("component", "lookup")),
		backupH:      handler.NewBackupHandler(backupSvc, logger.With("component", "backup")),

		verifier:    middleware.NewVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer, userStore),
		rateLimiter: middleware.NewRateLimiter(300, 30),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /api/health", s.healthHandler)
	if s.cfg.UploadDir != "" {
		prefix := s.cfg.UploadURLBase + "/"
		outerMux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.cfg.UploadDir))))
	}

	// Authenticated routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	authMiddleware := middleware.RequireAuth(s.verifier)
	outerMux.Handle("/api/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", authMiddleware(ws.HandleWebSocket(s.hub)))

	// Scan endpoints accept either a user token or the cron secret.
	cronMiddleware := middleware.RequireCronOrAuth(s.verifier, s.cfg.CronSecret)
	outerMux.Handle("POST /api/budget/alerts/check", cronMiddleware(http.HandlerFunc(s.budgetH.CheckAlerts)))
	outerMux.Handle("POST /api/warranties/check-expiring", cronMiddleware(http.HandlerFunc(s.warrantyH.CheckExpiring)))
	outerMux.Handle("POST /api/backup/run", cronMiddleware(http.HandlerFunc(s.backupH.Run)))

	rateLimited := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	return middleware.RequestLogger(s.logger.With("component", "http"))(rateLimited(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var one int
	if err := s.db.QueryRowContext(r.Context(), "SELECT 1").Scan(&one); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "error": "database unreachable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.meH.Get)

	// Home routes
	mux.HandleFunc("GET /api/homes", s.homeH.List)
	mux.HandleFunc("POST /api/homes", s.homeH.Create)
	mux.HandleFunc("GET /api/homes/{id}", s.homeH.Get)
	mux.HandleFunc("PATCH /api/homes/{id}", s.homeH.Update)

	// Inventory routes, one sub-resource per kind
	for _, sub := range []struct {
		path string
		kind string
	}{
		{"systems", model.KindSystem},
		{"appliances", model.KindAppliance},
		{"exterior-features", model.KindExterior},
		{"interior-features", model.KindInterior},
	} {
		mux.HandleFunc("POST /api/homes/{id}/"+sub.path, s.inventoryH.CreateBatch(sub.kind))
		mux.HandleFunc("GET /api/homes/{id}/"+sub.path, s.inventoryH.ListByHome(sub.kind))
	}
	mux.HandleFunc("PATCH /api/inventory/{id}", s.inventoryH.Update)

	// Maintenance record routes
	mux.HandleFunc("GET /api/maintenance/history", s.maintenanceH.List)
	mux.HandleFunc("POST /api/maintenance/history", s.maintenanceH.Create)

	// Task routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/snooze", s.taskH.Snooze)
	mux.HandleFunc("GET /api/tasks/{id}/completions", s.taskH.ListCompletions)

	// Budget routes
	mux.HandleFunc("POST /api/budget/plans", s.budgetH.CreatePlan)
	mux.HandleFunc("GET /api/budget/plans", s.budgetH.ListPlans)
	mux.HandleFunc("GET /api/budget/plans/{id}", s.budgetH.GetPlan)
	mux.HandleFunc("PATCH /api/budget/plans/{id}", s.budgetH.UpdatePlan)
	mux.HandleFunc("GET /api/budget/alerts", s.budgetH.ListAlerts)
	mux.HandleFunc("PATCH /api/budget/alerts/{id}", s.budgetH.SetAlertStatus)
	mux.HandleFunc("POST /api/budget/alerts/{id}/dismiss", s.budgetH.DismissAlert)

	// Project routes
	mux.HandleFunc("POST /api/projects", s.projectH.Create)
	mux.HandleFunc("GET /api/projects", s.projectH.List)
	mux.HandleFunc("GET /api/projects/{id}", s.projectH.Get)
	mux.HandleFunc("PATCH /api/projects/{id}", s.projectH.Update)
	mux.HandleFunc("POST /api/projects/{id}/materials", s.projectH.AddMaterial)
	mux.HandleFunc("PATCH /api/projects/{id}/materials/{material_id}", s.projectH.UpdateMaterial)
	mux.HandleFunc("POST /api/projects/{id}/tools", s.projectH.AddTool)
	mux.HandleFunc("DELETE /api/projects/{id}/tools/{tool_id}", s.projectH.DeleteTool)
	mux.HandleFunc("POST /api/projects/{id}/steps", s.projectH.AddStep)
	mux.HandleFunc("PATCH /api/projects/{id}/steps/{step_id}", s.projectH.UpdateStep)

	// Push notification routes
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)

	// Upload and lookup routes
	mux.HandleFunc("POST /api/upload", s.uploadH.Upload)
	mux.HandleFunc("POST /api/climate/lookup", s.lookupH.Climate)
	mux.HandleFunc("POST /api/property/lookup", s.lookupH.Property)
	mux.HandleFunc("POST /api/compliance/lookup", s.lookupH.Compliance)

	// Backup status (runs are registered with the cron middleware)
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
}
