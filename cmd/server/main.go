package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"davspay.backend/internal/config"
	"davspay.backend/internal/infrastructure/datasources/postgres"
	"davspay.backend/internal/infrastructure/otp"
	"davspay.backend/internal/infrastructure/repositories"
	"davspay.backend/internal/interfaces/http/handlers"
	"davspay.backend/internal/interfaces/http/middleware"
	"davspay.backend/internal/usecases"
	"davspay.backend/pkg/crypto"
	"davspay.backend/pkg/jwt"
	"davspay.backend/pkg/logger"
	"davspay.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	migrateDB  = postgres.Migrate
	runServer  = func(r *gin.Engine, port string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			log.Println("🛑 Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	if redis.Enabled() {
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "REDIS_URL not set, idempotency keys are ignored")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateDB(ctx, sqlDB); err != nil {
			return err
		}
		logger.Info(ctx, "Database migrations applied")
	}

	r := newRouter(cfg, buildRouteDeps(cfg, db))

	log.Printf("🚀 Davspay auth service starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func buildRouteDeps(cfg *config.Config, db *gorm.DB) routeDeps {
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	hasher := crypto.NewPasswordHasher(cfg.Security.BcryptCost)

	userRepo := repositories.NewUserRepository(db)
	uow := repositories.NewUnitOfWork(db)
	otpGateway := otp.NewTwoFactorClient(cfg.OTP)

	authUsecase := usecases.NewAuthUsecase(userRepo, hasher, jwtService)
	verificationUsecase := usecases.NewVerificationUsecase(userRepo, uow)
	otpUsecase := usecases.NewOTPUsecase(otpGateway)

	return routeDeps{
		authHandler:    handlers.NewAuthHandler(authUsecase, verificationUsecase),
		otpHandler:     handlers.NewOTPHandler(otpUsecase),
		authMiddleware: middleware.AuthMiddleware(jwtService),
		idempotency:    middleware.IdempotencyMiddleware(),
	}
}
