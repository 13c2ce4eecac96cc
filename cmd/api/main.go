package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"campuschat/internal/adapter/api"
	"campuschat/internal/adapter/api/handler"
	apimiddleware "campuschat/internal/adapter/api/middleware"
	"campuschat/internal/adapter/api/router"
	"campuschat/internal/adapter/repository"
	domainrepo "campuschat/internal/domain/repository"
	"campuschat/internal/infrastructure/firebase"
	"campuschat/internal/infrastructure/marketapi"
	"campuschat/internal/infrastructure/ratelimit"
	"campuschat/internal/infrastructure/websocket"
	"campuschat/internal/usecase"
	"campuschat/pkg/config"
	"campuschat/pkg/logger"
	"campuschat/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger().Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var roomRepo domainrepo.ChatRoomRepository
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory chat store; rooms are lost on restart")
		roomRepo = repository.NewMemoryChatRoomRepository()
	default:
		firestoreClient, err := firebase.NewFirestoreClient(ctx, cfg.FirebaseProject, firebase.Credentials{
			JSON: cfg.FirebaseCredentialsJSON,
			Path: cfg.FirebaseCredentialsPath,
		})
		if err != nil {
			logger.Logger().Fatalf("Failed to initialize Firestore: %v", err)
		}
		defer firestoreClient.Close()
		roomRepo = repository.NewFirestoreChatRoomRepository(firestoreClient)
	}

	var blockStore domainrepo.BlockSnapshotStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis at %s is not reachable yet: %v", cfg.RedisAddr, err)
		}
		blockStore = repository.NewRedisBlockSnapshotStore(redisClient)
	} else {
		logger.Info("REDIS_ADDR not set, block lists fall back to process memory")
		blockStore = repository.NewMemoryBlockSnapshotStore()
	}

	marketClient := marketapi.NewClient(cfg.MarketAPIURL, cfg.MarketAPITimeout)

	sendLimiter := ratelimit.NewRateLimiter(cfg.SendRatePerMinute, cfg.SendRatePerMinute)
	requestLimiter := ratelimit.NewRateLimiter(cfg.RequestRatePerMinute, cfg.RequestRatePerMinute)
	sendLimiter.StartCleanupRoutine(10*time.Minute, ctx.Done())
	requestLimiter.StartCleanupRoutine(10*time.Minute, ctx.Done())

	blockUseCase := usecase.NewBlockUseCase(marketClient, blockStore, cfg.BlockCacheTTL)
	chatUseCase := usecase.NewChatUseCase(roomRepo, marketClient, blockUseCase, marketClient, sendLimiter)
	reportUseCase := usecase.NewReportUseCase(marketClient)

	wsManager := websocket.NewManager(chatUseCase)
	wsManager.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.JWTSecret)

	router.Setup(e, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.StoreDriver),
		Chat:      handler.NewChatHandler(chatUseCase),
		Block:     handler.NewBlockHandler(blockUseCase),
		Report:    handler.NewReportHandler(reportUseCase),
		WebSocket: handler.NewWebSocketHandler(wsManager, authMiddleware),
	}, authMiddleware, requestLimiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Logger().Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
