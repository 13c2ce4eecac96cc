package router

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the realtime endpoint. It authenticates
// inside the handler since the token arrives as a query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
