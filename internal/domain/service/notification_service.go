package service

import "context"

type MessageNotification struct {
	RoomID         string `json:"roomId"`
	RecipientID    string `json:"receiverId"`
	RecipientEmail string `json:"receiverEmail"`
	SenderName     string `json:"senderName"`
	Text           string `json:"message"`
}

// NotificationService asks the marketplace API to push a new-message
// notification. Delivery is best effort.
type NotificationService interface {
	NotifyMessage(ctx context.Context, token string, n MessageNotification) error
}
