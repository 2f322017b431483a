package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ouerghi-selim/merelformation-api/api/swagger"
	"github.com/ouerghi-selim/merelformation-api/internal/handler"
	"github.com/ouerghi-selim/merelformation-api/internal/middleware"
	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/repository"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
	"github.com/ouerghi-selim/merelformation-api/pkg/cache"
	"github.com/ouerghi-selim/merelformation-api/pkg/config"
	"github.com/ouerghi-selim/merelformation-api/pkg/database"
	"github.com/ouerghi-selim/merelformation-api/pkg/logger"
	corsmiddleware "github.com/ouerghi-selim/merelformation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ouerghi-selim/merelformation-api/pkg/middleware/requestid"
	"github.com/ouerghi-selim/merelformation-api/pkg/storage"
)

// @title MerelFormation Workflow API
// @version 1.0.0
// @description Reservation and rental status workflow with notification dispatch
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, delivery dedup disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.TTL)

	reservationRepo := repository.NewReservationRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	dedupRepo := repository.NewDedupRepository(redisClient, logr)

	catalog, err := service.NewTemplateCatalog(service.SeedTemplates(), logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build template catalog", "error", err)
	}

	metricsService := service.NewMetricsService()
	documentService := service.NewDocumentService(documentRepo, nil, logr)
	reservationService := service.NewReservationService(reservationRepo, logr)
	rentalService := service.NewRentalService(rentalRepo, logr)
	workflowService := service.NewWorkflowService()
	auditService := service.NewAuditService(auditRepo, exportStore, signer, cfg.APIPrefix, logr)
	contextBuilder := service.NewEntityContextBuilder(reservationRepo, rentalRepo)

	var mailer service.Mailer = service.NewLogMailer(logr)
	sink := service.NewQueueSink(mailer, dedupRepo, auditRepo, cfg.Notifications, logr)
	if cfg.Notifications.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sink.Start(ctx)
		defer sink.Stop()
	}

	dispatcher := service.NewNotificationDispatcher(
		reservationRepo,
		rentalRepo,
		auditRepo,
		documentService,
		paymentRepo,
		catalog,
		contextBuilder,
		sink,
		cfg.Notifications.AdminAddress,
		metricsService,
		logr,
	)

	verifier := middleware.NewTokenVerifier(cfg.JWT.Secret)
	reservationHandler := handler.NewReservationHandler(reservationService, dispatcher)
	rentalHandler := handler.NewRentalHandler(rentalService, dispatcher)
	documentHandler := handler.NewDocumentHandler(documentService)
	auditHandler := handler.NewAuditHandler(auditService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	workflows := api.Group("/workflows")
	workflows.GET("/:workflow/statuses", workflowHandler.Statuses)
	workflows.GET("/:workflow/transitions", workflowHandler.Transitions)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(verifier))
	admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor))

	admin.GET("/reservations", reservationHandler.List)
	admin.GET("/reservations/:id", reservationHandler.Get)
	admin.GET("/reservations/:id/transitions", reservationHandler.Transitions)
	admin.PUT("/reservations/:id/status", reservationHandler.UpdateStatus)

	admin.GET("/rentals", rentalHandler.List)
	admin.GET("/rentals/:id", rentalHandler.Get)
	admin.GET("/rentals/:id/transitions", rentalHandler.Transitions)
	admin.PUT("/rentals/:id/status", rentalHandler.UpdateStatus)

	admin.GET("/documents", documentHandler.List)
	admin.PUT("/documents/:id/validate", documentHandler.Validate)
	admin.PUT("/documents/:id/reject", documentHandler.Reject)

	admin.GET("/audits", auditHandler.List)
	admin.POST("/audits/export", auditHandler.Export)
	admin.GET("/audits/export/:token", auditHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "templates", catalog.Len())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
