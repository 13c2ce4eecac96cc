package usecase

import (
	"context"
	"strings"
	"time"

	"campuschat/internal/domain/entity"
	"campuschat/internal/domain/repository"
	"campuschat/internal/domain/service"
	"campuschat/internal/infrastructure/ratelimit"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

const (
	actionSendMessage = "send_message"
	notifyTimeout     = 10 * time.Second
)

type ChatUseCase struct {
	roomRepo    repository.ChatRoomRepository
	profileRepo repository.ProfileRepository
	blocks      *BlockUseCase
	notifier    service.NotificationService
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	roomRepo repository.ChatRoomRepository,
	profileRepo repository.ProfileRepository,
	blocks *BlockUseCase,
	notifier service.NotificationService,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		roomRepo:    roomRepo,
		profileRepo: profileRepo,
		blocks:      blocks,
		notifier:    notifier,
		rateLimiter: rateLimiter,
	}
}

type ResolveRoomInput struct {
	ListingID string
	Buyer     entity.ParticipantInfo
	Seller    entity.ParticipantInfo
	Listing   *entity.ListingSnapshot
}

type SendMessageInput struct {
	RoomID      string
	Text        string
	MessageType entity.MessageType
	MediaURL    string
}

// RoomView is a room as one viewer sees it.
type RoomView struct {
	*entity.ChatRoom
	Unread           bool                    `json:"unread"`
	OtherParticipant *entity.ParticipantInfo `json:"otherParticipant,omitempty"`
}

func NewRoomView(room *entity.ChatRoom, viewer string) *RoomView {
	return &RoomView{
		ChatRoom:         room,
		Unread:           room.IsUnreadFor(viewer),
		OtherParticipant: room.OtherParticipant(viewer),
	}
}

// VisibleRooms drops rooms the viewer soft-deleted or whose other participant
// the viewer blocked, and annotates the rest with their unread state. Input
// order is kept.
func VisibleRooms(rooms []*entity.ChatRoom, viewer string, blocked *entity.BlockList) []*RoomView {
	views := make([]*RoomView, 0, len(rooms))
	for _, room := range rooms {
		if room.IsDeletedFor(viewer) {
			continue
		}
		if other := room.OtherParticipant(viewer); other != nil && blocked.Contains(other.UserID) {
			continue
		}
		views = append(views, NewRoomView(room, viewer))
	}
	return views
}

// ResolveRoom returns the room for (listing, buyer, seller), creating it on
// first use. An existing room is reconciled: the buyer is removed from
// deletedFor and a missing listing image is filled in.
func (uc *ChatUseCase) ResolveRoom(ctx context.Context, caller entity.Identity, input ResolveRoomInput) (*RoomView, error) {
	if input.ListingID == "" || input.Buyer.ID == "" || input.Seller.ID == "" {
		return nil, errors.BadRequest("listing, buyer and seller are required", nil)
	}
	if input.Buyer.ID == input.Seller.ID {
		return nil, errors.BadRequest("You cannot start a chat with yourself", nil)
	}
	if caller.Email != input.Buyer.ID && caller.Email != input.Seller.ID {
		logger.Warn("ResolveRoom: %s is neither buyer nor seller of listing %s", caller.Email, input.ListingID)
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	uc.fillCallerInfo(ctx, caller, &input)
	// The block filter matches on userId and participantsInfo is never re-synced.
	if input.Buyer.UserID == "" || input.Seller.UserID == "" {
		return nil, errors.BadRequest("buyer and seller userId are required", nil)
	}

	room := entity.NewChatRoom(input.ListingID, input.Buyer, input.Seller, input.Listing)
	stored, created, err := uc.roomRepo.CreateIfAbsent(ctx, room)
	if err != nil {
		logger.Error("ResolveRoom: failed to get or create room %s: %v", room.ID, err)
		return nil, err
	}
	if created {
		logger.Info("ResolveRoom: created room %s", stored.ID)
		return NewRoomView(stored, caller.Email), nil
	}

	patch := stored.DriftFrom(input.Buyer.ID, input.Listing)
	if patch.IsEmpty() {
		return NewRoomView(stored, caller.Email), nil
	}

	if err := uc.roomRepo.ApplyPatch(ctx, stored.ID, patch); err != nil {
		logger.Error("ResolveRoom: failed to reconcile room %s: %v", stored.ID, err)
		return nil, err
	}
	stored, err = uc.roomRepo.GetByID(ctx, stored.ID)
	if err != nil {
		return nil, err
	}
	return NewRoomView(stored, caller.Email), nil
}

// fillCallerInfo completes the caller's own snapshot from the marketplace
// profile when the client sent only an identity. Failure leaves the input as is.
func (uc *ChatUseCase) fillCallerInfo(ctx context.Context, caller entity.Identity, input *ResolveRoomInput) {
	info := &input.Buyer
	if caller.Email == input.Seller.ID {
		info = &input.Seller
	}
	if info.UserID == "" {
		info.UserID = caller.UserID
	}
	if info.Name != "" || uc.profileRepo == nil {
		return
	}

	profile, err := uc.profileRepo.GetMyProfile(ctx, caller.Token)
	if err != nil {
		logger.Warn("ResolveRoom: profile lookup for %s failed: %v", caller.Email, err)
		return
	}
	info.Name = profile.Name
	if info.Avatar == "" {
		info.Avatar = profile.Avatar
	}
}

func (uc *ChatUseCase) GetRoom(ctx context.Context, caller entity.Identity, roomID string) (*RoomView, error) {
	room, err := uc.participantRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	return NewRoomView(room, caller.Email), nil
}

// SendMessage appends a message to the room. Blank text without media is a
// no-op and returns a nil message.
func (uc *ChatUseCase) SendMessage(ctx context.Context, caller entity.Identity, input SendMessageInput) (*entity.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" && input.MediaURL == "" {
		return nil, nil
	}

	msgType := input.MessageType
	if msgType == "" {
		msgType = entity.MessageTypeText
	}
	if !msgType.Valid() {
		return nil, errors.BadRequest("Unsupported message type", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(caller.Email, actionSendMessage); !allowed {
			logger.Warn("SendMessage Rate Limited: %s must wait %v", caller.Email, wait)
			return nil, errors.TooManyRequests("You are sending messages too quickly")
		}
	}

	room, err := uc.participantRoom(ctx, caller, input.RoomID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		SenderID:    caller.Email,
		Text:        text,
		MessageType: msgType,
		MediaURL:    input.MediaURL,
	}
	if err := uc.roomRepo.AppendMessage(ctx, room.ID, message); err != nil {
		logger.Error("SendMessage: failed to append message to room %s: %v", room.ID, err)
		return nil, err
	}

	uc.notifyRecipient(caller, room, message)
	return message, nil
}

func (uc *ChatUseCase) notifyRecipient(caller entity.Identity, room *entity.ChatRoom, message *entity.Message) {
	if uc.notifier == nil {
		return
	}
	other := room.OtherParticipant(caller.Email)
	if other == nil {
		return
	}

	senderName := caller.Name
	for _, p := range room.ParticipantsInfo {
		if p.ID == caller.Email && p.Name != "" {
			senderName = p.Name
		}
	}

	n := service.MessageNotification{
		RoomID:         room.ID,
		RecipientID:    other.UserID,
		RecipientEmail: other.ID,
		SenderName:     senderName,
		Text:           message.Text,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := uc.notifier.NotifyMessage(ctx, caller.Token, n); err != nil {
			logger.Warn("SendMessage: notification for room %s failed: %v", room.ID, err)
		}
	}()
}

func (uc *ChatUseCase) MarkAsRead(ctx context.Context, caller entity.Identity, roomID string) error {
	if _, err := uc.participantRoom(ctx, caller, roomID); err != nil {
		return err
	}
	if err := uc.roomRepo.MarkRead(ctx, roomID, caller.Email); err != nil {
		logger.Error("MarkAsRead: failed for room %s, user %s: %v", roomID, caller.Email, err)
		return err
	}
	return nil
}

func (uc *ChatUseCase) SoftDelete(ctx context.Context, caller entity.Identity, roomID string) error {
	if _, err := uc.participantRoom(ctx, caller, roomID); err != nil {
		return err
	}
	if err := uc.roomRepo.SoftDelete(ctx, roomID, caller.Email); err != nil {
		logger.Error("SoftDelete: failed for room %s, user %s: %v", roomID, caller.Email, err)
		return err
	}
	return nil
}

func (uc *ChatUseCase) ListRooms(ctx context.Context, caller entity.Identity) ([]*RoomView, error) {
	rooms, err := uc.roomRepo.ListByParticipant(ctx, caller.Email)
	if err != nil {
		return nil, err
	}
	return VisibleRooms(rooms, caller.Email, uc.blocks.Snapshot(ctx, caller)), nil
}

// WatchRooms streams the viewer's visible rooms until ctx is cancelled.
func (uc *ChatUseCase) WatchRooms(ctx context.Context, caller entity.Identity, fn func([]*RoomView)) error {
	return uc.roomRepo.WatchRooms(ctx, caller.Email, func(rooms []*entity.ChatRoom) {
		fn(VisibleRooms(rooms, caller.Email, uc.blocks.Snapshot(ctx, caller)))
	})
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, caller entity.Identity, roomID string, limit int) ([]*entity.Message, error) {
	if _, err := uc.participantRoom(ctx, caller, roomID); err != nil {
		return nil, err
	}
	messages, err := uc.roomRepo.ListMessages(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	return entity.ResolvedMessages(messages), nil
}

// WatchMessages streams the room's messages, oldest first, until ctx is
// cancelled. Messages whose timestamp has not resolved are left out.
func (uc *ChatUseCase) WatchMessages(ctx context.Context, caller entity.Identity, roomID string, fn func([]*entity.Message)) error {
	if _, err := uc.participantRoom(ctx, caller, roomID); err != nil {
		return err
	}
	return uc.roomRepo.WatchMessages(ctx, roomID, func(messages []*entity.Message) {
		fn(entity.ResolvedMessages(messages))
	})
}

func (uc *ChatUseCase) participantRoom(ctx context.Context, caller entity.Identity, roomID string) (*entity.ChatRoom, error) {
	if roomID == "" {
		return nil, errors.BadRequest("Room ID is required", nil)
	}
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(caller.Email) {
		logger.Warn("%s is not a participant in room %s", caller.Email, roomID)
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}
	return room, nil
}
