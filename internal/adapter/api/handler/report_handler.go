package handler

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/domain/entity"
	"campuschat/internal/usecase"
	"campuschat/pkg/response"
)

type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

type makeReportRequest struct {
	TargetType string `json:"targetType" validate:"required,oneof=user listing chat"`
	TargetID   string `json:"targetId" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
	Details    string `json:"details" validate:"max=1000"`
}

func (h *ReportHandler) MakeReport(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req makeReportRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.Make(c.Request().Context(), caller, usecase.MakeReportInput{
		TargetType: entity.ReportTarget(req.TargetType),
		TargetID:   req.TargetID,
		Reason:     entity.ReportReason(req.Reason),
		Details:    req.Details,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, report)
}
