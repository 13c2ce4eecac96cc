package repository

import (
	"context"

	"campuschat/internal/domain/entity"
)

// RoomsHandler and MessagesHandler receive full snapshots; each call replaces
// the previous state.
type (
	RoomsHandler    func(rooms []*entity.ChatRoom)
	MessagesHandler func(messages []*entity.Message)
)

type ChatRoomRepository interface {
	// CreateIfAbsent writes room unless a room with the same ID exists. It
	// returns the stored room and whether this call created it.
	CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error)
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	ApplyPatch(ctx context.Context, id string, patch entity.RoomPatch) error

	// AppendMessage stores message and, in the same write, updates the room's
	// lastMessage, lastUpdated and the sender's lastRead entry, and removes the
	// sender from deletedFor.
	AppendMessage(ctx context.Context, roomID string, message *entity.Message) error
	MarkRead(ctx context.Context, roomID, identity string) error
	SoftDelete(ctx context.Context, roomID, identity string) error

	ListByParticipant(ctx context.Context, identity string) ([]*entity.ChatRoom, error)
	ListMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, error)

	// WatchRooms and WatchMessages block until ctx is done or the underlying
	// stream fails.
	WatchRooms(ctx context.Context, identity string, fn RoomsHandler) error
	WatchMessages(ctx context.Context, roomID string, fn MessagesHandler) error
}
