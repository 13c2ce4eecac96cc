package entity

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage:
		return true
	}
	return false
}

// Message is immutable once written.
type Message struct {
	ID          string      `json:"id" firestore:"-"`
	SenderID    string      `json:"senderId" firestore:"senderId"`
	Text        string      `json:"text" firestore:"text"`
	MessageType MessageType `json:"messageType" firestore:"messageType"`
	MediaURL    string      `json:"mediaUrl,omitempty" firestore:"mediaUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Resolved is false while the server timestamp has not been assigned.
func (m *Message) Resolved() bool {
	return !m.CreatedAt.IsZero()
}

// ResolvedMessages drops messages without a createdAt, keeping order.
func ResolvedMessages(messages []*Message) []*Message {
	out := make([]*Message, 0, len(messages))
	for _, m := range messages {
		if m.Resolved() {
			out = append(out, m)
		}
	}
	return out
}
