package repository

import (
	"context"

	"campuschat/internal/domain/entity"
)

type ReportRepository interface {
	Create(ctx context.Context, token string, report *entity.Report) error
}

type ProfileRepository interface {
	GetMyProfile(ctx context.Context, token string) (*entity.Profile, error)
}
