package usecase

import (
	"context"
	"strings"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

const maxReportDetails = 1000

type ReportUseCase struct {
	reportRepo repository.ReportRepository
}

func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo}
}

type MakeReportInput struct {
	TargetType entity.ReportTarget
	TargetID   string
	Reason     entity.ReportReason
	Details    string
}

func (uc *ReportUseCase) Make(ctx context.Context, caller entity.Identity, input MakeReportInput) (*entity.Report, error) {
	if !input.TargetType.Valid() {
		return nil, errors.BadRequest("Unknown report target", nil)
	}
	if input.TargetID == "" {
		return nil, errors.BadRequest("Report target is required", nil)
	}
	if input.TargetType == entity.ReportTargetUser && input.TargetID == caller.UserID {
		return nil, errors.BadRequest("You cannot report yourself", nil)
	}

	label, ok := input.Reason.Label()
	if !ok {
		return nil, errors.BadRequest("Unknown report reason", nil)
	}

	details := strings.TrimSpace(input.Details)
	if input.Reason == entity.ReportReasonOther && details == "" {
		return nil, errors.BadRequest("Please describe the problem", nil)
	}
	if len(details) > maxReportDetails {
		return nil, errors.BadRequest("Report details are too long", nil)
	}

	report := &entity.Report{
		TargetType:  input.TargetType,
		TargetID:    input.TargetID,
		Reason:      input.Reason,
		ReasonLabel: label,
		Details:     details,
		ReporterID:  caller.UserID,
	}
	if err := uc.reportRepo.Create(ctx, caller.Token, report); err != nil {
		logger.Error("MakeReport: %s against %s %s failed: %v", caller.UserID, input.TargetType, input.TargetID, err)
		return nil, err
	}
	return report, nil
}
