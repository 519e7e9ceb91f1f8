package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-tracker/config"
	_ "expense-tracker/docs"
	"expense-tracker/internal/handler"
	"expense-tracker/internal/logging"
	"expense-tracker/internal/ports"
	"expense-tracker/internal/repository"
	"expense-tracker/internal/security"
	"expense-tracker/internal/service"
	"expense-tracker/internal/util"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title expense-tracker auth API
// @version 1.0
// @description Регистрация, вход и управление сессиями (access и refresh токены)

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", config.DefaultConfigPath), "путь к YAML конфигурации")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.Logging.Level)

	db, err := config.SetupDatabase(ctx, &cfg.DatabaseConfig)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error(ctx, "ошибка при закрытии БД", "error", err)
		}
	}()

	redisClient, err := config.SetupRedis(ctx, &cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}

	var locks ports.LockRepository
	if redisClient != nil {
		locks = repository.NewLockRepository(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error(ctx, "ошибка при закрытии Redis", "error", err)
			}
		}()
	} else {
		logger.Warn(ctx, "Redis не настроен, очистка токенов идет без блокировки")
	}

	srv, router := config.SetupServer(cfg.ServerAddr)
	clock := util.SystemClock{}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка создания JWT сервиса: %v", err)
	}

	credentials, err := service.NewCredentialService(userRepo, db.DB, clock, logger)
	if err != nil {
		log.Fatalf("Ошибка создания сервиса учетных данных: %v", err)
	}
	refreshTokens := service.NewRefreshTokenStore(tokenRepo, db.DB, cfg.JWT.RefreshTokenTTL, cfg.Cleanup.Retention, logger)
	authService := service.NewAuthenticationService(credentials, refreshTokens, jwtService, clock, logger, cfg.JWT.RotateRefreshTokens)

	sweeper := service.NewSweeper(refreshTokens, locks, clock, logger, cfg.Cleanup.Interval, cfg.Cleanup.LockTTL)
	go sweeper.Run(ctx)

	authHandler := handler.NewAuthenticationHandler(authService, logger)
	userHandler := handler.NewUserHandler(credentials, logger)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	handler.SetupRoutes(router, authHandler, userHandler, security.JWTMiddleware(jwtService, clock, logger))

	runServer(ctx, srv, logger)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func runServer(ctx context.Context, server *http.Server, logger logging.Logger) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "сервер запущен", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		logger.Info(ctx, "получен сигнал остановки работы сервера", "signal", sig.String())
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error(ctx, "ошибка при остановке сервера", "error", err)
	} else {
		logger.Info(ctx, "сервер успешно остановлен")
	}
}
