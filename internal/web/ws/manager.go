package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/game"
)

// Manager tracks open websocket connections by room and session
type Manager struct {
	mu     sync.RWMutex
	rooms  map[model.RoomCode]map[model.SessionID]*Conn
	logger *slog.Logger
}

// Ensure Manager implements game.Publisher
var _ game.Publisher = (*Manager)(nil)

// NewManager creates a new Manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		rooms:  make(map[model.RoomCode]map[model.SessionID]*Conn),
		logger: logger.With(slog.String("component", "ws")),
	}
}

func (m *Manager) add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.rooms[c.room]
	if !ok {
		conns = make(map[model.SessionID]*Conn)
		m.rooms[c.room] = conns
	}
	conns[c.session] = c
}

func (m *Manager) remove(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.rooms[c.room]
	if !ok || conns[c.session] != c {
		return
	}
	delete(conns, c.session)
	if len(conns) == 0 {
		delete(m.rooms, c.room)
	}
}

func (m *Manager) get(room model.RoomCode, session model.SessionID) *Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[room][session]
}

// Publish queues the update's view on the addressed session's socket
func (m *Manager) Publish(_ context.Context, update game.Update) {
	c := m.get(update.Room, update.Session)
	if c == nil {
		return
	}
	c.enqueue(game.NewStateUpdate(update.View))
}

// RoomClosed tells every socket of a destroyed room and closes them
func (m *Manager) RoomClosed(code model.RoomCode) {
	m.mu.Lock()
	conns := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()

	for _, c := range conns {
		c.enqueue(roomClosed{Type: string(model.EventRoomClosed), Room: code})
		c.close(websocket.StatusNormalClosure, "room closed")
	}
}

// Count returns the number of open sockets in a room
func (m *Manager) Count(code model.RoomCode) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[code])
}

// CloseAll closes every socket with StatusGoingAway. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[model.RoomCode]map[model.SessionID]*Conn)
	m.mu.Unlock()

	for _, conns := range rooms {
		for _, c := range conns {
			c.close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}
