package router

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/handler"
	"campuschat/internal/adapter/api/middleware"
	"campuschat/internal/infrastructure/ratelimit"
)

type Handlers struct {
	Health    *handler.HealthHandler
	Chat      *handler.ChatHandler
	Block     *handler.BlockHandler
	Report    *handler.ReportHandler
	WebSocket *handler.WebSocketHandler
}

// Setup registers every route. requestLimiter may be nil.
func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, requestLimiter *ratelimit.RateLimiter) {
	SetupHealthRouter(e, h.Health)
	SetupWebSocketRouter(e, h.WebSocket)

	v1 := e.Group("/v1")
	if requestLimiter != nil {
		v1.Use(middleware.RateLimit(requestLimiter))
	}
	v1.Use(authMiddleware.Authenticate)

	SetupChatRouter(v1, h.Chat)
	SetupBlockRouter(v1, h.Block)
	SetupReportRouter(v1, h.Report)
}
