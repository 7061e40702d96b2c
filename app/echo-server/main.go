package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiInsider/app/echo-server/router"
	"aiInsider/business/engagement"
	"aiInsider/business/experiment"
	"aiInsider/business/lead"
	"aiInsider/business/tracking"
	"aiInsider/business/visitor"
	"aiInsider/internal/middleware"
	"aiInsider/internal/repository/crm"
	"aiInsider/internal/repository/notification"
	psqlRepo "aiInsider/internal/repository/postgres"
	redisRepo "aiInsider/internal/repository/redis"
	"aiInsider/internal/rest"
	"aiInsider/pkg/config"
	"aiInsider/pkg/database"
	redisdb "aiInsider/pkg/database/redis"
	"aiInsider/pkg/logger"
	"aiInsider/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting AI Insider landing API", "version", cfg.App.Version)
	metrics.Init()

	landing, err := config.LoadLanding(cfg.App.LandingPath)
	if err != nil {
		logger.Fatal("Failed to load landing config", "path", cfg.App.LandingPath, "error", err)
	}
	for _, w := range experiment.Validate(landing.Experiments) {
		logger.Warn("Experiment config problem", "error", w)
	}
	rules := landing.Scoring
	if len(rules.Points) == 0 {
		rules = engagement.DefaultRules()
	}
	if len(rules.Milestones) == 0 {
		rules.Milestones = engagement.DefaultMilestones()
	}
	for _, w := range engagement.ValidateRules(rules) {
		logger.Warn("Scoring rules problem", "error", w)
	}

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected successfully")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", "error", err)
	}
	healthChecks := map[string]rest.Pinger{"postgres": rest.PingFunc(sqlDB.PingContext)}

	// Key/value store: redis when configured, postgres otherwise
	var store experiment.Persistence
	if cfg.Redis.Enabled() {
		redisClient, err := redisdb.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		defer redisClient.Close()

		kv := redisRepo.NewKVStore(redisClient, cfg.Redis.KeyTTL)
		healthChecks["redis"] = kv
		store = kv
		logger.Info("Redis connected successfully")
	} else {
		store = psqlRepo.NewKVStore(db)
		logger.Info("Redis not configured, using postgres key/value store")
	}

	// Init repo
	leadRepo := psqlRepo.NewLeadRepository(db)
	eventRepo := psqlRepo.NewTrackingEventRepository(db)
	overrideRepo := psqlRepo.NewExperimentOverrideRepository(db)

	catalog := experiment.NewCatalog(landing.Experiments, overrideRepo)
	if err := catalog.Reload(context.Background()); err != nil {
		logger.Error("Failed to load experiment overrides", "error", err)
	}

	// Tracking backends
	backends := []tracking.Backend{eventRepo}
	var crmSinks []lead.CRMSink
	for _, ep := range cfg.CRM {
		repo := crm.NewCRMRepository(crm.CRMConfig{Name: ep.Name, BaseURL: ep.BaseURL, APIKey: ep.APIKey})
		backends = append(backends, repo)
		crmSinks = append(crmSinks, repo)
	}

	dispatcher := tracking.NewDispatcher(tracking.Config{
		QueueSize:   cfg.Tracking.QueueSize,
		SendTimeout: cfg.Tracking.SendTimeout,
	}, visitor.NewConsentGate(store), backends...)
	dispatcher.Start()

	// Notifications
	var slack *notification.SlackRepository
	var alerter lead.SalesAlerter
	var notifRepo lead.NotificationRepository
	if cfg.Slack.WebhookURL != "" {
		slack = notification.NewSlackRepository(cfg.Slack.WebhookURL)
		alerter = slack
	}
	if cfg.Mailjet.MailjetBaseUrl != "" {
		notifRepo = notification.NewMailjetRepository(
			notification.MailjetConfig{
				MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
				MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
				MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
				MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
				MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
			},
		)
	}

	// Init service
	assigner := experiment.NewAssigner(store)
	sessions := engagement.NewSessions(rules, dispatcher, engagement.SessionsConfig{
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
	})
	if slack != nil {
		n := engagement.NotifySales(sessions, slack, 5*time.Second)
		logger.Info("Sales notification hooked", "thresholds", n)
	}

	visitorService := visitor.NewVisitorService(store, catalog, assigner, dispatcher)
	leadService := lead.NewLeadService(
		leadRepo,
		validator.New(),
		sessions,
		visitorService,
		dispatcher,
		crmSinks,
		alerter,
		notifRepo,
		lead.Config{
			EmailEncryptionKey: cfg.Lead.EmailEncryptionKey,
			HighValueThreshold: cfg.Lead.HighValueThreshold,
			SendConfirmation:   cfg.Lead.SendConfirmation,
		},
	)

	// Periodic jobs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() { sessions.Sweep() }); err != nil {
		logger.Fatal("Failed to schedule session sweep", "error", err)
	}
	if _, err := scheduler.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := catalog.Reload(ctx); err != nil {
			logger.Warn("Failed to reload experiment overrides", "error", err)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule catalog reload", "error", err)
	}
	scheduler.Start()

	// Init handler
	visitorHandler := rest.NewVisitorHandler(visitorService)
	sessionHandler := rest.NewSessionHandler(sessions)
	leadHandler := rest.NewLeadHandler(leadService)
	experimentAdminHandler := rest.NewExperimentAdminHandler(catalog)
	healthHandler := rest.NewHealthHandler(healthChecks)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Observe())
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.App.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", healthHandler.Health)

	// Auth middleware
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupVisitorRoutes(api, visitorHandler)
	router.SetupSessionRoutes(api, sessionHandler)
	router.SetupLeadRoutes(api, leadHandler)
	router.SetupExperimentAdminRoutes(api, experimentAdminHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	<-scheduler.Stop().Done()

	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("Tracking dispatcher shutdown error", "error", err)
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
}
