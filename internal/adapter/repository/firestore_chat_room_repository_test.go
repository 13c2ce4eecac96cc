package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campuschat/internal/domain/entity"
	"campuschat/pkg/errors"
)

func TestMapWriteError(t *testing.T) {
	assert.NoError(t, mapWriteError(nil, "ignored"))

	err := mapWriteError(status.Error(codes.NotFound, "no document"), "Failed to mark as read")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	err = mapWriteError(status.Error(codes.Unavailable, "try later"), "Failed to mark as read")
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))
}

func TestToInterfaces(t *testing.T) {
	assert.Equal(t, []interface{}{"a", "b"}, toInterfaces([]string{"a", "b"}))
	assert.Empty(t, toInterfaces(nil))
}

// The tests below need the Firestore emulator:
//
//	gcloud emulators firestore start --host-port=localhost:8686
//	FIRESTORE_EMULATOR_HOST=localhost:8686 go test ./internal/adapter/repository/
func newEmulatorRepository(t *testing.T) *firestoreChatRoomRepository {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "campuschat-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewFirestoreChatRoomRepository(client).(*firestoreChatRoomRepository)
}

func emulatorRoom(t *testing.T) *entity.ChatRoom {
	listing := fmt.Sprintf("L%d", time.Now().UnixNano())
	return entity.NewChatRoom(listing,
		entity.ParticipantInfo{ID: "buyer@a.com", UserID: "u-buyer"},
		entity.ParticipantInfo{ID: "seller@b.com", UserID: "u-seller"},
		&entity.ListingSnapshot{Title: "Desk", Price: 40},
	)
}

func TestFirestoreCreateIfAbsentRace(t *testing.T) {
	repo := newEmulatorRepository(t)
	room := emulatorRoom(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := repo.CreateIfAbsent(ctx, room)
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for c := range results {
		if c {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestFirestoreMessageRoundTrip(t *testing.T) {
	repo := newEmulatorRepository(t)
	room := emulatorRoom(t)
	ctx := context.Background()

	_, _, err := repo.CreateIfAbsent(ctx, room)
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, room.ID, "buyer@a.com"))

	msg := &entity.Message{SenderID: "buyer@a.com", Text: "Is this available?", MessageType: entity.MessageTypeText}
	require.NoError(t, repo.AppendMessage(ctx, room.ID, msg))
	assert.NotEmpty(t, msg.ID)

	stored, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, "Is this available?", stored.LastMessage.Text)
	assert.NotNil(t, stored.LastReadBy("buyer@a.com"))
	assert.Nil(t, stored.LastReadBy("seller@b.com"))
	assert.False(t, stored.IsDeletedFor("buyer@a.com"))
	assert.True(t, stored.IsUnreadFor("seller@b.com"))

	require.NoError(t, repo.MarkRead(ctx, room.ID, "seller@b.com"))
	stored, err = repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsUnreadFor("seller@b.com"))

	messages, err := repo.ListMessages(ctx, room.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].CreatedAt.IsZero())
}

func TestFirestoreMissingRoom(t *testing.T) {
	repo := newEmulatorRepository(t)

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.True(t, errors.Is(repo.MarkRead(context.Background(), "does-not-exist", "a@b.com"), "NOT_FOUND"))
}

func TestFirestoreApplyPatchFillsNullListing(t *testing.T) {
	repo := newEmulatorRepository(t)
	room := emulatorRoom(t)
	room.Listing = nil
	ctx := context.Background()

	_, _, err := repo.CreateIfAbsent(ctx, room)
	require.NoError(t, err)

	patch := room.DriftFrom("buyer@a.com", &entity.ListingSnapshot{Title: "Desk", ImageURL: "https://cdn/desk.jpg"})
	require.NoError(t, repo.ApplyPatch(ctx, room.ID, patch))

	stored, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Listing)
	assert.Equal(t, "https://cdn/desk.jpg", stored.Listing.ImageURL)
}
