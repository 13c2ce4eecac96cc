package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/pkg/errors"
)

const blockSnapshotTTL = 7 * 24 * time.Hour

type redisBlockSnapshotStore struct {
	client *redis.Client
}

func NewRedisBlockSnapshotStore(client *redis.Client) repository.BlockSnapshotStore {
	return &redisBlockSnapshotStore{
		client: client,
	}
}

func blockSnapshotKey(viewerID string) string {
	return "blocks:" + viewerID
}

func (s *redisBlockSnapshotStore) Save(ctx context.Context, viewerID string, users []entity.BlockedUser) error {
	data, err := json.Marshal(users)
	if err != nil {
		return errors.Internal("Failed to encode block list", err)
	}
	if err := s.client.Set(ctx, blockSnapshotKey(viewerID), data, blockSnapshotTTL).Err(); err != nil {
		return errors.Internal("Failed to persist block list", err)
	}
	return nil
}

func (s *redisBlockSnapshotStore) Load(ctx context.Context, viewerID string) ([]entity.BlockedUser, bool, error) {
	data, err := s.client.Get(ctx, blockSnapshotKey(viewerID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Internal("Failed to load persisted block list", err)
	}

	var users []entity.BlockedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, false, errors.Internal("Failed to decode persisted block list", err)
	}
	return users, true, nil
}

// memoryBlockSnapshotStore is used when no Redis is configured; the fallback
// then only survives for the life of the process.
type memoryBlockSnapshotStore struct {
	mu    sync.RWMutex
	lists map[string][]entity.BlockedUser
}

func NewMemoryBlockSnapshotStore() repository.BlockSnapshotStore {
	return &memoryBlockSnapshotStore{lists: make(map[string][]entity.BlockedUser)}
}

func (s *memoryBlockSnapshotStore) Save(ctx context.Context, viewerID string, users []entity.BlockedUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[viewerID] = append([]entity.BlockedUser(nil), users...)
	return nil
}

func (s *memoryBlockSnapshotStore) Load(ctx context.Context, viewerID string) ([]entity.BlockedUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, ok := s.lists[viewerID]
	return append([]entity.BlockedUser(nil), users...), ok, nil
}
