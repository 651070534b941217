package ws

import (
	"sync"

	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/services/dto"
)

// Event is the wire envelope pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const EventNewMessage = "message.new"

// Manager tracks live connections per user. A user may hold several
// connections (tabs, devices); events go to all of them. When a
// Fanout is attached, events are published through Redis so every
// instance delivers to its own connections.
type Manager struct {
	clients    map[string]map[*Client]bool // userID -> connections
	register   chan *Client
	unregister chan *Client
	fanout     *Fanout
	mu         sync.RWMutex
}

func NewManager(fanout *Fanout) *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		fanout:     fanout,
	}
}

// Run owns the client registry. Call in its own goroutine.
func (m *Manager) Run() {
	if m.fanout != nil {
		go m.fanout.Subscribe(m.deliverLocal)
	}

	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.UserID] == nil {
				m.clients[client.UserID] = make(map[*Client]bool)
			}
			m.clients[client.UserID][client] = true
			total := len(m.clients[client.UserID])
			m.mu.Unlock()
			logger.With("user_id", client.UserID, "connections", total).Info("websocket client connected")

		case client := <-m.unregister:
			m.mu.Lock()
			if conns, ok := m.clients[client.UserID]; ok && conns[client] {
				delete(conns, client)
				close(client.Send)
				if len(conns) == 0 {
					delete(m.clients, client.UserID)
				}
			}
			m.mu.Unlock()
			logger.With("user_id", client.UserID).Info("websocket client disconnected")
		}
	}
}

// NotifyNewMessage implements services.Notifier.
func (m *Manager) NotifyNewMessage(receiverID string, message dto.MessageDTO) {
	event := Event{Type: EventNewMessage, Payload: message}

	if m.fanout != nil {
		if err := m.fanout.Publish(receiverID, event); err != nil {
			logger.WithError(err).Warn("websocket fanout publish failed, delivering locally")
			m.deliverLocal(receiverID, event)
		}
		return
	}

	m.deliverLocal(receiverID, event)
}

func (m *Manager) deliverLocal(userID string, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.clients[userID] {
		select {
		case client.Send <- event:
		default:
			// slow consumer, drop the event rather than block
		}
	}
}
