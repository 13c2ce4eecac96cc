package usecase

import (
	"context"
	"sync"
	"time"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

// BlockUseCase caches each viewer's block list. The marketplace API is the
// source of truth; the snapshot store is the fallback while it is down.
type BlockUseCase struct {
	remote repository.BlockRepository
	store  repository.BlockSnapshotStore
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]*entity.BlockList
}

func NewBlockUseCase(remote repository.BlockRepository, store repository.BlockSnapshotStore, ttl time.Duration) *BlockUseCase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BlockUseCase{
		remote: remote,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]*entity.BlockList),
	}
}

// Snapshot returns the cached list while it is fresh and refreshes otherwise.
// It never fails: with no source available the list is empty and stale.
func (uc *BlockUseCase) Snapshot(ctx context.Context, viewer entity.Identity) *entity.BlockList {
	uc.mu.RLock()
	list, ok := uc.cache[viewer.UserID]
	uc.mu.RUnlock()

	if ok && uc.fresh(list) {
		return list
	}
	return uc.Refresh(ctx, viewer)
}

// Refresh fetches the block list from the marketplace API.
func (uc *BlockUseCase) Refresh(ctx context.Context, viewer entity.Identity) *entity.BlockList {
	now := uc.now()

	users, err := uc.remote.ListBlocked(ctx, viewer.Token)
	if err == nil {
		list := entity.NewBlockList(users, now)
		uc.put(viewer.UserID, list)
		if err := uc.store.Save(ctx, viewer.UserID, users); err != nil {
			logger.Warn("BlockUseCase: failed to persist block list for %s: %v", viewer.UserID, err)
		}
		return list
	}

	logger.Warn("BlockUseCase: block list fetch failed for %s, using fallback: %v", viewer.UserID, err)

	users, found, loadErr := uc.store.Load(ctx, viewer.UserID)
	if loadErr != nil {
		logger.Error("BlockUseCase: fallback load failed for %s: %v", viewer.UserID, loadErr)
	}
	if !found {
		if cached := uc.cached(viewer.UserID); cached != nil {
			users = cached.Users
		}
	}

	list := entity.NewBlockList(users, now)
	list.Stale = true
	uc.put(viewer.UserID, list)
	return list
}

// Blocked always goes to the marketplace API so the settings screen shows
// current data, falling back like Refresh.
func (uc *BlockUseCase) Blocked(ctx context.Context, viewer entity.Identity) *entity.BlockList {
	return uc.Refresh(ctx, viewer)
}

func (uc *BlockUseCase) Block(ctx context.Context, viewer entity.Identity, userID string) (*entity.BlockList, error) {
	if err := uc.validateTarget(viewer, userID); err != nil {
		return nil, err
	}
	if err := uc.remote.Block(ctx, viewer.Token, userID); err != nil {
		return nil, err
	}
	return uc.Refresh(ctx, viewer), nil
}

func (uc *BlockUseCase) Unblock(ctx context.Context, viewer entity.Identity, userID string) (*entity.BlockList, error) {
	if err := uc.validateTarget(viewer, userID); err != nil {
		return nil, err
	}
	if err := uc.remote.Unblock(ctx, viewer.Token, userID); err != nil {
		return nil, err
	}
	return uc.Refresh(ctx, viewer), nil
}

func (uc *BlockUseCase) validateTarget(viewer entity.Identity, userID string) error {
	if userID == "" {
		return errors.BadRequest("User ID is required", nil)
	}
	if userID == viewer.UserID {
		return errors.BadRequest("You cannot block yourself", nil)
	}
	return nil
}

// A stale list is retried sooner than a fresh one expires.
func (uc *BlockUseCase) fresh(list *entity.BlockList) bool {
	maxAge := uc.ttl
	if list.Stale {
		maxAge = uc.ttl / 10
	}
	return uc.now().Sub(list.FetchedAt) < maxAge
}

func (uc *BlockUseCase) cached(viewerID string) *entity.BlockList {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.cache[viewerID]
}

func (uc *BlockUseCase) put(viewerID string, list *entity.BlockList) {
	uc.mu.Lock()
	uc.cache[viewerID] = list
	uc.mu.Unlock()
}
