package repository

import (
	"context"

	"campuschat/internal/domain/entity"
)

// BlockRepository is the authoritative block list, owned by the marketplace API.
type BlockRepository interface {
	ListBlocked(ctx context.Context, token string) ([]entity.BlockedUser, error)
	Block(ctx context.Context, token, userID string) error
	Unblock(ctx context.Context, token, userID string) error
}

// BlockSnapshotStore persists the last good block list per viewer so it can
// be served while the marketplace API is unreachable.
type BlockSnapshotStore interface {
	Save(ctx context.Context, viewerID string, users []entity.BlockedUser) error
	Load(ctx context.Context, viewerID string) ([]entity.BlockedUser, bool, error)
}
