package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuschat/internal/domain/entity"
	"campuschat/pkg/errors"
)

var (
	buyer  = entity.ParticipantInfo{ID: "buyer@a.com", UserID: "u-buyer"}
	seller = entity.ParticipantInfo{ID: "seller@b.com", UserID: "u-seller"}
)

func TestCreateIfAbsentConcurrent(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()

	var created int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.CreateIfAbsent(ctx, entity.NewChatRoom("L1", buyer, seller, nil))
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&created, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	assert.Equal(t, 1, repo.Count())
}

func TestWritesOnMissingRoom(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()

	err := repo.MarkRead(ctx, "missing", buyer.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	err = repo.AppendMessage(ctx, "missing", &entity.Message{SenderID: buyer.ID, Text: "hi"})
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestReturnedRoomsAreCopies(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()

	room, _, err := repo.CreateIfAbsent(ctx, entity.NewChatRoom("L1", buyer, seller, nil))
	require.NoError(t, err)
	room.DeletedFor = append(room.DeletedFor, buyer.ID)

	stored, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.DeletedFor)
}

func TestListMessagesKeepsNewestWithinLimit(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()

	room, _, err := repo.CreateIfAbsent(ctx, entity.NewChatRoom("L1", buyer, seller, nil))
	require.NoError(t, err)
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, repo.AppendMessage(ctx, room.ID, &entity.Message{SenderID: buyer.ID, Text: text}))
	}

	msgs, err := repo.ListMessages(ctx, room.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)
}

func TestListMessagesOrdersByCreatedAt(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	room, _, err := repo.CreateIfAbsent(ctx, entity.NewChatRoom("L1", buyer, seller, nil))
	require.NoError(t, err)

	repo.SetClock(func() time.Time { return base.Add(2 * time.Minute) })
	require.NoError(t, repo.AppendMessage(ctx, room.ID, &entity.Message{SenderID: buyer.ID, Text: "late"}))
	repo.SetClock(func() time.Time { return base.Add(time.Minute) })
	require.NoError(t, repo.AppendMessage(ctx, room.ID, &entity.Message{SenderID: seller.ID, Text: "early"}))
	repo.InjectMessage(room.ID, &entity.Message{ID: "m0", SenderID: seller.ID, Text: "first", CreatedAt: base})

	msgs, err := repo.ListMessages(ctx, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"first", "early", "late"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})

	msgs, err = repo.ListMessages(ctx, room.ID, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "late", msgs[0].Text)
}

func TestApplyPatchFillsNullListing(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	ctx := context.Background()

	room, _, err := repo.CreateIfAbsent(ctx, entity.NewChatRoom("L1", buyer, seller, nil))
	require.NoError(t, err)

	patch := room.DriftFrom(buyer.ID, &entity.ListingSnapshot{Title: "Desk", ImageURL: "https://cdn/desk.jpg"})
	require.NoError(t, repo.ApplyPatch(ctx, room.ID, patch))

	stored, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Listing)
	assert.Equal(t, "Desk", stored.Listing.Title)
	assert.Equal(t, "https://cdn/desk.jpg", stored.Listing.ImageURL)
}

func TestWatchMessagesStopsOnCancel(t *testing.T) {
	repo := NewMemoryChatRoomRepository()
	room, _, err := repo.CreateIfAbsent(context.Background(), entity.NewChatRoom("L1", buyer, seller, nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	snapshots := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- repo.WatchMessages(ctx, room.ID, func(msgs []*entity.Message) {
			snapshots <- len(msgs)
		})
	}()

	assert.Equal(t, 0, <-snapshots)
	require.NoError(t, repo.AppendMessage(context.Background(), room.ID, &entity.Message{SenderID: buyer.ID, Text: "hi"}))
	assert.Equal(t, 1, <-snapshots)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
