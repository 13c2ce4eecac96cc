package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

const (
	chatRoomsCollection = "chatRooms"
	messagesCollection  = "messages"
)

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{
		client: client,
	}
}

func (r *firestoreChatRoomRepository) rooms() *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection)
}

func (r *firestoreChatRoomRepository) messages(roomID string) *firestore.CollectionRef {
	return r.rooms().Doc(roomID).Collection(messagesCollection)
}

func (r *firestoreChatRoomRepository) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error) {
	ref := r.rooms().Doc(room.ID)

	_, err := ref.Create(ctx, room)
	created := err == nil
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return nil, false, errors.Internal("Failed to create chat room", err)
	}
	if !created {
		logger.Debug("CreateIfAbsent: chat room %s already exists", room.ID)
	}

	stored, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.rooms().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", err)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	return roomFromDoc(doc)
}

func (r *firestoreChatRoomRepository) ApplyPatch(ctx context.Context, id string, patch entity.RoomPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var updates []firestore.Update
	if len(patch.RestoreFor) > 0 {
		updates = append(updates, firestore.Update{Path: "deletedFor", Value: firestore.ArrayRemove(toInterfaces(patch.RestoreFor)...)})
	}
	switch {
	case patch.Listing != nil:
		// A null snapshot cannot take a nested field path.
		updates = append(updates, firestore.Update{Path: "listing", Value: patch.Listing})
	case patch.ListingImageURL != "":
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"listing", "imageUrl"}, Value: patch.ListingImageURL})
	}

	_, err := r.rooms().Doc(id).Update(ctx, updates)
	return mapWriteError(err, "Failed to reconcile chat room")
}

func (r *firestoreChatRoomRepository) AppendMessage(ctx context.Context, roomID string, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	roomRef := r.rooms().Doc(roomID)
	msgRef := r.messages(roomID).Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(msgRef, message); err != nil {
			return err
		}
		return tx.Update(roomRef, []firestore.Update{
			// lastMessage starts out null, so it is replaced as a whole.
			{Path: "lastMessage", Value: map[string]interface{}{
				"text":      message.Text,
				"senderId":  message.SenderID,
				"createdAt": firestore.ServerTimestamp,
			}},
			{FieldPath: firestore.FieldPath{"lastRead", entity.ParticipantKey(message.SenderID)}, Value: firestore.ServerTimestamp},
			{Path: "lastUpdated", Value: firestore.ServerTimestamp},
			{Path: "deletedFor", Value: firestore.ArrayRemove(message.SenderID)},
		})
	})
	if err != nil {
		return mapWriteError(err, "Failed to send message")
	}

	// Read back so the caller sees the server-assigned createdAt.
	doc, err := msgRef.Get(ctx)
	if err != nil {
		logger.Warn("AppendMessage: message %s written but read-back failed: %v", message.ID, err)
		return nil
	}
	if stored, err := messageFromDoc(doc); err == nil {
		*message = *stored
	}
	return nil
}

func (r *firestoreChatRoomRepository) MarkRead(ctx context.Context, roomID, identity string) error {
	_, err := r.rooms().Doc(roomID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"lastRead", entity.ParticipantKey(identity)}, Value: firestore.ServerTimestamp},
	})
	return mapWriteError(err, "Failed to mark chat room as read")
}

func (r *firestoreChatRoomRepository) SoftDelete(ctx context.Context, roomID, identity string) error {
	_, err := r.rooms().Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "deletedFor", Value: firestore.ArrayUnion(identity)},
	})
	return mapWriteError(err, "Failed to delete chat room")
}

func (r *firestoreChatRoomRepository) participantRooms(identity string) firestore.Query {
	return r.rooms().Where("participants", "array-contains", identity).OrderBy("lastUpdated", firestore.Desc)
}

func (r *firestoreChatRoomRepository) ListByParticipant(ctx context.Context, identity string) ([]*entity.ChatRoom, error) {
	docs, err := r.participantRooms(identity).Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching chat rooms for %s: %v", identity, err)
		return nil, errors.Internal("Failed to fetch chat rooms", err)
	}
	return roomsFromDocs(docs), nil
}

func (r *firestoreChatRoomRepository) ListMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, error) {
	query := r.messages(roomID).OrderBy("createdAt", firestore.Asc)
	if limit > 0 {
		query = query.LimitToLast(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching messages for room %s: %v", roomID, err)
		return nil, errors.Internal("Failed to fetch messages", err)
	}
	return messagesFromDocs(docs), nil
}

func (r *firestoreChatRoomRepository) WatchRooms(ctx context.Context, identity string, fn repository.RoomsHandler) error {
	it := r.participantRooms(identity).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return errors.Internal("Chat room subscription failed", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errors.Internal("Failed to read chat room snapshot", err)
		}
		fn(roomsFromDocs(docs))
	}
}

func (r *firestoreChatRoomRepository) WatchMessages(ctx context.Context, roomID string, fn repository.MessagesHandler) error {
	it := r.messages(roomID).OrderBy("createdAt", firestore.Asc).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return errors.Internal("Message subscription failed", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errors.Internal("Failed to read message snapshot", err)
		}
		fn(messagesFromDocs(docs))
	}
}

func roomFromDoc(doc *firestore.DocumentSnapshot) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}
	room.ID = doc.Ref.ID
	return &room, nil
}

func roomsFromDocs(docs []*firestore.DocumentSnapshot) []*entity.ChatRoom {
	rooms := make([]*entity.ChatRoom, 0, len(docs))
	for _, doc := range docs {
		room, err := roomFromDoc(doc)
		if err != nil {
			logger.Warn("Skipping malformed chat room %s: %v", doc.Ref.ID, err)
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms
}

func messageFromDoc(doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	message.ID = doc.Ref.ID
	return &message, nil
}

func messagesFromDocs(docs []*firestore.DocumentSnapshot) []*entity.Message {
	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		message, err := messageFromDoc(doc)
		if err != nil {
			logger.Warn("Skipping malformed message %s: %v", doc.Ref.ID, err)
			continue
		}
		messages = append(messages, message)
	}
	return messages
}

func mapWriteError(err error, message string) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return errors.NotFound("Chat room", err)
	}
	return errors.Internal(message, err)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
