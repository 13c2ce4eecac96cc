package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/pkg/errors"
)

// MemoryChatRoomRepository keeps rooms in process. It backs STORE_DRIVER=memory
// and the use-case tests, and mirrors the Firestore semantics: server-side
// timestamps come from its clock and every write wakes all watchers.
type MemoryChatRoomRepository struct {
	mu       sync.RWMutex
	rooms    map[string]*entity.ChatRoom
	messages map[string][]*entity.Message
	now      func() time.Time

	watchMu  sync.Mutex
	watchers map[chan struct{}]struct{}
}

func NewMemoryChatRoomRepository() *MemoryChatRoomRepository {
	return &MemoryChatRoomRepository{
		rooms:    make(map[string]*entity.ChatRoom),
		messages: make(map[string][]*entity.Message),
		now:      time.Now,
		watchers: make(map[chan struct{}]struct{}),
	}
}

var _ repository.ChatRoomRepository = (*MemoryChatRoomRepository)(nil)

// SetClock replaces the timestamp source.
func (r *MemoryChatRoomRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Count returns the number of stored rooms.
func (r *MemoryChatRoomRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *MemoryChatRoomRepository) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error) {
	r.mu.Lock()
	existing, ok := r.rooms[room.ID]
	if ok {
		stored := cloneRoom(existing)
		r.mu.Unlock()
		return stored, false, nil
	}

	stored := cloneRoom(room)
	ts := r.now()
	stored.CreatedAt = ts
	stored.LastUpdated = ts
	r.rooms[room.ID] = stored
	out := cloneRoom(stored)
	r.mu.Unlock()

	r.notify()
	return out, true, nil
}

func (r *MemoryChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	return cloneRoom(room), nil
}

func (r *MemoryChatRoomRepository) ApplyPatch(ctx context.Context, id string, patch entity.RoomPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	return r.update(id, func(room *entity.ChatRoom, _ time.Time) {
		for _, identity := range patch.RestoreFor {
			room.DeletedFor = removeString(room.DeletedFor, identity)
		}
		if patch.Listing != nil {
			listing := *patch.Listing
			room.Listing = &listing
		}
		if patch.ListingImageURL != "" {
			if room.Listing == nil {
				room.Listing = &entity.ListingSnapshot{}
			}
			room.Listing.ImageURL = patch.ListingImageURL
		}
	})
}

func (r *MemoryChatRoomRepository) AppendMessage(ctx context.Context, roomID string, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	err := r.update(roomID, func(room *entity.ChatRoom, ts time.Time) {
		stored := *message
		stored.CreatedAt = ts
		r.messages[roomID] = append(r.messages[roomID], &stored)
		*message = stored

		room.LastMessage = &entity.LastMessage{Text: message.Text, SenderID: message.SenderID, CreatedAt: ts}
		room.LastUpdated = ts
		setLastRead(room, message.SenderID, ts)
		room.DeletedFor = removeString(room.DeletedFor, message.SenderID)
	})
	return err
}

func (r *MemoryChatRoomRepository) MarkRead(ctx context.Context, roomID, identity string) error {
	return r.update(roomID, func(room *entity.ChatRoom, ts time.Time) {
		setLastRead(room, identity, ts)
	})
}

func (r *MemoryChatRoomRepository) SoftDelete(ctx context.Context, roomID, identity string) error {
	return r.update(roomID, func(room *entity.ChatRoom, _ time.Time) {
		if !room.IsDeletedFor(identity) {
			room.DeletedFor = append(room.DeletedFor, identity)
		}
	})
}

func (r *MemoryChatRoomRepository) ListByParticipant(ctx context.Context, identity string) ([]*entity.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.HasParticipant(identity) {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].LastUpdated.After(rooms[j].LastUpdated)
	})
	return rooms, nil
}

func (r *MemoryChatRoomRepository) ListMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, error) {
	r.mu.RLock()
	all := make([]*entity.Message, 0, len(r.messages[roomID]))
	for _, m := range r.messages[roomID] {
		msg := *m
		all = append(all, &msg)
	}
	r.mu.RUnlock()

	// Unresolved timestamps sort first, as Firestore orders nulls before values.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *MemoryChatRoomRepository) WatchRooms(ctx context.Context, identity string, fn repository.RoomsHandler) error {
	return r.watch(ctx, func() {
		rooms, _ := r.ListByParticipant(ctx, identity)
		fn(rooms)
	})
}

func (r *MemoryChatRoomRepository) WatchMessages(ctx context.Context, roomID string, fn repository.MessagesHandler) error {
	return r.watch(ctx, func() {
		messages, _ := r.ListMessages(ctx, roomID, 0)
		fn(messages)
	})
}

// InjectMessage stores a message as-is, bypassing timestamp assignment. It
// models documents written by other clients, including ones whose createdAt
// has not resolved yet.
func (r *MemoryChatRoomRepository) InjectMessage(roomID string, message *entity.Message) {
	r.mu.Lock()
	msg := *message
	r.messages[roomID] = append(r.messages[roomID], &msg)
	r.mu.Unlock()
	r.notify()
}

func (r *MemoryChatRoomRepository) watch(ctx context.Context, emit func()) error {
	ch := make(chan struct{}, 1)
	r.watchMu.Lock()
	r.watchers[ch] = struct{}{}
	r.watchMu.Unlock()

	defer func() {
		r.watchMu.Lock()
		delete(r.watchers, ch)
		r.watchMu.Unlock()
	}()

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			emit()
		}
	}
}

func (r *MemoryChatRoomRepository) notify() {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	for ch := range r.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *MemoryChatRoomRepository) update(id string, mutate func(room *entity.ChatRoom, ts time.Time)) error {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat room", nil)
	}
	mutate(room, r.now())
	r.mu.Unlock()

	r.notify()
	return nil
}

func setLastRead(room *entity.ChatRoom, identity string, ts time.Time) {
	if room.LastRead == nil {
		room.LastRead = make(map[string]*time.Time)
	}
	t := ts
	room.LastRead[entity.ParticipantKey(identity)] = &t
}

func cloneRoom(room *entity.ChatRoom) *entity.ChatRoom {
	out := *room
	out.Participants = append([]string(nil), room.Participants...)
	out.ParticipantsInfo = append([]entity.ParticipantInfo(nil), room.ParticipantsInfo...)
	out.DeletedFor = append([]string{}, room.DeletedFor...)
	if room.Listing != nil {
		listing := *room.Listing
		out.Listing = &listing
	}
	if room.LastMessage != nil {
		last := *room.LastMessage
		out.LastMessage = &last
	}
	if room.LastRead != nil {
		out.LastRead = make(map[string]*time.Time, len(room.LastRead))
		for k, v := range room.LastRead {
			if v == nil {
				out.LastRead[k] = nil
				continue
			}
			t := *v
			out.LastRead[k] = &t
		}
	}
	return &out
}

func removeString(slice []string, item string) []string {
	out := slice[:0:0]
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}
