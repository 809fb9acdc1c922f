package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"devhub.backend/internal/config"
	"devhub.backend/internal/infrastructure/email"
	"devhub.backend/internal/infrastructure/events"
	"devhub.backend/internal/infrastructure/gateway"
	"devhub.backend/internal/infrastructure/jobs"
	"devhub.backend/internal/infrastructure/repositories"
	"devhub.backend/internal/interfaces/http/handlers"
	"devhub.backend/internal/interfaces/http/middleware"
	"devhub.backend/internal/usecases"
	"devhub.backend/pkg/crypto"
	"devhub.backend/pkg/jwt"
	"devhub.backend/pkg/logger"
	"devhub.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	hasher := crypto.NewHasher(cfg.Credentials.BcryptCost, cfg.Credentials.HashPoolSize)

	// Repositories
	appRepo := repositories.NewApplicationRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)
	historyRepo := repositories.NewStateHistoryRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Outbound clients
	gatewayClient := gateway.NewClient(cfg.Gateway)
	emailClient := email.NewClient(cfg.Email)
	eventsClient := events.NewPublisher(cfg.Redis.Channel)

	// Usecases
	appUsecase := usecases.NewApplicationUsecase(appRepo, subRepo, historyRepo, uow, gatewayClient, hasher)
	lifecycleUsecase := usecases.NewLifecycleUsecase(appRepo, historyRepo, uow, emailClient, cfg.Uplift.VerificationValidity)
	credentialUsecase := usecases.NewCredentialUsecase(appRepo, uow, hasher, cfg.Credentials.SecretLimit)
	subscriptionUsecase := usecases.NewSubscriptionUsecase(appRepo, subRepo, eventsClient)
	collaboratorUsecase := usecases.NewCollaboratorUsecase(appRepo, uow, emailClient)
	rateLimitUsecase := usecases.NewRateLimitUsecase(appRepo, gatewayClient)

	// Handlers
	appHandler := handlers.NewApplicationHandler(appUsecase)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleUsecase)
	gatekeeperHandler := handlers.NewGatekeeperHandler(lifecycleUsecase, rateLimitUsecase)
	credentialHandler := handlers.NewCredentialHandler(credentialUsecase)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionUsecase)
	collaboratorHandler := handlers.NewCollaboratorHandler(collaboratorUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewVerificationExpiryJob(lifecycleUsecase, cfg.Jobs.ExpirySweepInterval)
	if cfg.Jobs.ExpirySweepEnabled {
		go expiryJob.Start(ctx)
	}
	reconcileJob := jobs.NewGatewayReconcileJob(rateLimitUsecase, cfg.Jobs.ReconcileInterval)
	if cfg.Jobs.ReconcileEnabled {
		go reconcileJob.Start(ctx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		appHandler:          appHandler,
		lifecycleHandler:    lifecycleHandler,
		gatekeeperHandler:   gatekeeperHandler,
		credentialHandler:   credentialHandler,
		subscriptionHandler: subscriptionHandler,
		collaboratorHandler: collaboratorHandler,
		authMiddleware:      authMiddleware,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if cfg.Jobs.ExpirySweepEnabled {
			expiryJob.Stop()
		}
		if cfg.Jobs.ReconcileEnabled {
			reconcileJob.Stop()
		}
		cancel()
	}()

	log.Printf("DevHub backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
