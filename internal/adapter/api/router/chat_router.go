package router

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/handler"
)

// SetupChatRouter sets up room and message routes. WebSocket is separate.
func SetupChatRouter(v1 *echo.Group, chatHandler *handler.ChatHandler) {
	rooms := v1.Group("/rooms")

	rooms.POST("", chatHandler.ResolveRoom)
	rooms.GET("", chatHandler.ListRooms)
	rooms.GET("/:id", chatHandler.GetRoom)
	rooms.DELETE("/:id", chatHandler.DeleteRoom)
	rooms.PUT("/:id/read", chatHandler.MarkAsRead)

	rooms.GET("/:id/messages", chatHandler.ListMessages)
	rooms.POST("/:id/messages", chatHandler.SendMessage)
}
