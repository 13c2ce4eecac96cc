package websocket

import (
	"context"
	"encoding/json"
	"time"

	"campuschat/internal/domain/entity"
	"campuschat/internal/usecase"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
)

const requestTimeout = 15 * time.Second

// Client frames
const (
	MessageTypePing             = "ping"
	MessageTypeSubscribeRoom    = "subscribe_room"
	MessageTypeUnsubscribeRoom  = "unsubscribe_room"
	MessageTypeSubscribeRooms   = "subscribe_rooms"
	MessageTypeUnsubscribeRooms = "unsubscribe_rooms"
	MessageTypeMarkRead         = "mark_read"
	MessageTypeSendMessage      = "send_message"
)

// Server frames
const (
	MessageTypePong             = "pong"
	MessageTypeMessagesSnapshot = "messages_snapshot"
	MessageTypeRoomsSnapshot    = "rooms_snapshot"
	MessageTypeMessageSent      = "message_sent"
	MessageTypeError            = "error"
)

// ClientMessage is a frame sent by the app.
type ClientMessage struct {
	Type        string             `json:"type"`
	RoomID      string             `json:"room_id,omitempty"`
	Text        string             `json:"text,omitempty"`
	MessageType entity.MessageType `json:"message_type,omitempty"`
	MediaURL    string             `json:"media_url,omitempty"`
	TempID      string             `json:"temp_id,omitempty"`
}

// WSMessage is a frame sent to the app.
type WSMessage struct {
	Type      string      `json:"type"`
	RoomID    string      `json:"room_id,omitempty"`
	TempID    string      `json:"temp_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorData struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		logger.Warn("WebSocket: failed to unmarshal message from client %s: %v", client.ID, err)
		m.sendError(client, "", "", errors.BadRequest("Invalid message format", err))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.sendToClient(client, WSMessage{Type: MessageTypePong, Data: map[string]string{"status": "alive"}})

	case MessageTypeSubscribeRoom:
		m.handleSubscribeRoom(client, msg)

	case MessageTypeUnsubscribeRoom:
		m.handleUnsubscribeRoom(client, msg)

	case MessageTypeSubscribeRooms:
		m.handleSubscribeRooms(client)

	case MessageTypeUnsubscribeRooms:
		m.handleUnsubscribeRooms(client)

	case MessageTypeMarkRead:
		m.handleMarkRead(client, msg)

	case MessageTypeSendMessage:
		m.handleSendMessage(client, msg)

	default:
		logger.Debug("WebSocket: unknown message type '%s' from client %s", msg.Type, client.ID)
		m.sendError(client, msg.RoomID, msg.TempID, errors.BadRequest("Unknown message type", nil))
	}
}

// handleSubscribeRoom replaces any earlier subscription to the same room.
func (m *Manager) handleSubscribeRoom(client *Client, msg ClientMessage) {
	if msg.RoomID == "" {
		m.sendError(client, "", msg.TempID, errors.BadRequest("room_id is required", nil))
		return
	}

	ctx, cancel := context.WithCancel(client.ctx)
	sub := &subscription{cancel: cancel}

	client.subMu.Lock()
	if prev, ok := client.rooms[msg.RoomID]; ok {
		prev.cancel()
	}
	client.rooms[msg.RoomID] = sub
	client.subMu.Unlock()

	roomID := msg.RoomID
	go func() {
		defer func() {
			cancel()
			client.subMu.Lock()
			if client.rooms[roomID] == sub {
				delete(client.rooms, roomID)
			}
			client.subMu.Unlock()
		}()

		err := m.chat.WatchMessages(ctx, client.Identity, roomID, func(messages []*entity.Message) {
			m.sendToClient(client, WSMessage{Type: MessageTypeMessagesSnapshot, RoomID: roomID, Data: messages})
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("WebSocket: message subscription for room %s failed: %v", roomID, err)
			m.sendToClient(client, WSMessage{Type: MessageTypeMessagesSnapshot, RoomID: roomID, Data: []*entity.Message{}})
			m.sendError(client, roomID, "", err)
		}
	}()
}

func (m *Manager) handleUnsubscribeRoom(client *Client, msg ClientMessage) {
	client.subMu.Lock()
	sub, ok := client.rooms[msg.RoomID]
	delete(client.rooms, msg.RoomID)
	client.subMu.Unlock()

	if ok {
		sub.cancel()
	}
}

func (m *Manager) handleSubscribeRooms(client *Client) {
	ctx, cancel := context.WithCancel(client.ctx)
	sub := &subscription{cancel: cancel}

	client.subMu.Lock()
	if client.roomList != nil {
		client.roomList.cancel()
	}
	client.roomList = sub
	client.subMu.Unlock()

	go func() {
		defer func() {
			cancel()
			client.subMu.Lock()
			if client.roomList == sub {
				client.roomList = nil
			}
			client.subMu.Unlock()
		}()

		err := m.chat.WatchRooms(ctx, client.Identity, func(rooms []*usecase.RoomView) {
			m.sendToClient(client, WSMessage{Type: MessageTypeRoomsSnapshot, Data: rooms})
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("WebSocket: room list subscription for %s failed: %v", client.Identity.Email, err)
			m.sendToClient(client, WSMessage{Type: MessageTypeRoomsSnapshot, Data: []*usecase.RoomView{}})
			m.sendError(client, "", "", err)
		}
	}()
}

func (m *Manager) handleUnsubscribeRooms(client *Client) {
	client.subMu.Lock()
	sub := client.roomList
	client.roomList = nil
	client.subMu.Unlock()

	if sub != nil {
		sub.cancel()
	}
}

// Subscriptions reports how many room-message subscriptions the client holds
// and whether its room-list subscription is active.
func (c *Client) Subscriptions() (rooms int, roomList bool) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return len(c.rooms), c.roomList != nil
}

func (m *Manager) handleMarkRead(client *Client, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(client.ctx, requestTimeout)
	defer cancel()

	if err := m.chat.MarkAsRead(ctx, client.Identity, msg.RoomID); err != nil {
		m.sendError(client, msg.RoomID, msg.TempID, err)
	}
}

func (m *Manager) handleSendMessage(client *Client, msg ClientMessage) {
	ctx, cancel := context.WithTimeout(client.ctx, requestTimeout)
	defer cancel()

	message, err := m.chat.SendMessage(ctx, client.Identity, usecase.SendMessageInput{
		RoomID:      msg.RoomID,
		Text:        msg.Text,
		MessageType: msg.MessageType,
		MediaURL:    msg.MediaURL,
	})
	if err != nil {
		m.sendError(client, msg.RoomID, msg.TempID, err)
		return
	}

	// A nil message means the text was blank and nothing was written.
	m.sendToClient(client, WSMessage{Type: MessageTypeMessageSent, RoomID: msg.RoomID, TempID: msg.TempID, Data: message})
}

func (m *Manager) sendError(client *Client, roomID, tempID string, err error) {
	data := ErrorData{Message: "Something went wrong"}
	if appErr, ok := errors.As(err); ok {
		data.Code = appErr.Code
		data.Message = appErr.Message
	}
	m.sendToClient(client, WSMessage{Type: MessageTypeError, RoomID: roomID, TempID: tempID, Data: data})
}

func (m *Manager) sendToClient(client *Client, message WSMessage) {
	message.Timestamp = time.Now().UTC().Format(time.RFC3339)
	messageBytes, err := json.Marshal(message)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s frame: %v", message.Type, err)
		return
	}
	client.push(messageBytes)
}
