package router

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/adapter/api/handler"
)

func SetupReportRouter(v1 *echo.Group, reportHandler *handler.ReportHandler) {
	v1.POST("/reports", reportHandler.MakeReport)
}
