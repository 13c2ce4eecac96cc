package router

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/handler"
)

func SetupBlockRouter(v1 *echo.Group, blockHandler *handler.BlockHandler) {
	blocks := v1.Group("/blocks")

	blocks.GET("", blockHandler.ListBlocked)
	blocks.POST("/:id", blockHandler.Block)
	blocks.DELETE("/:id", blockHandler.Unblock)
}
