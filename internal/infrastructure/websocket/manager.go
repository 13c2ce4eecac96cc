package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"campuschat/internal/domain/entity"
	"campuschat/internal/usecase"
	"campuschat/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBufferSize = 64
)

// ChatService is the part of the chat use case the socket drives.
type ChatService interface {
	WatchMessages(ctx context.Context, caller entity.Identity, roomID string, fn func([]*entity.Message)) error
	WatchRooms(ctx context.Context, caller entity.Identity, fn func([]*usecase.RoomView)) error
	MarkAsRead(ctx context.Context, caller entity.Identity, roomID string) error
	SendMessage(ctx context.Context, caller entity.Identity, input usecase.SendMessageInput) (*entity.Message, error)
}

// Client is one socket. Its subscriptions live until they are cancelled or
// the socket closes.
type Client struct {
	ID       string
	Identity entity.Identity
	Conn     *websocket.Conn
	Send     chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	subMu    sync.Mutex
	rooms    map[string]*subscription
	roomList *subscription
}

type subscription struct {
	cancel context.CancelFunc
}

func NewClient(identity entity.Identity, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:       uuid.New().String(),
		Identity: identity,
		Conn:     conn,
		Send:     make(chan []byte, sendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
		rooms:    make(map[string]*subscription),
	}
}

// Done is closed once the client has been unregistered.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// push queues a frame, giving up when the client is gone.
func (c *Client) push(frame []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	case c.Send <- frame:
		return true
	}
}

// Manager tracks live clients and runs their subscriptions.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	chat       ChatService
	mutex      sync.RWMutex
	done       chan struct{}
}

func NewManager(chat ChatService) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		chat:       chat,
		done:       make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("WebSocket: client %s registered for %s", client.ID, client.Identity.Email)

			case client := <-m.Unregister:
				m.remove(client)

			case <-ctx.Done():
				m.mutex.Lock()
				for id, client := range m.clients {
					client.cancel()
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Done is closed once the manager has stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Add registers client. It returns false, cancelling the client, when the
// manager has already stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		client.cancel()
		return false
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	delete(m.clients, client.ID)
	m.mutex.Unlock()

	// Cancelling the client context ends every subscription it owns.
	client.cancel()
	logger.Debug("WebSocket: client %s unregistered", client.ID)
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-c.ctx.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for client %s: %v", c.ID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
