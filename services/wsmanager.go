package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// wsConn is the subset of *websocket.Conn the manager relies on. Tests
// substitute fakes; production code always hands in gorilla connections.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WSConnManager tracks the open notification sockets per user. A user can
// hold several at once (multiple tabs, phone plus laptop).
type WSConnManager struct {
	mu    sync.RWMutex
	conns map[int64][]wsConn
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		conns: make(map[int64][]wsConn),
	}
}

func (m *WSConnManager) Add(userID int64, conn wsConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[userID] = append(m.conns[userID], conn)
}

// Remove detaches the connection and closes it. Closing an
// already-closed socket is harmless.
func (m *WSConnManager) Remove(userID int64, conn wsConn) {
	m.mu.Lock()
	conns := m.conns[userID]
	for i, c := range conns {
		if c == conn {
			m.conns[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.conns[userID]) == 0 {
		delete(m.conns, userID)
	}
	m.mu.Unlock()
	_ = conn.Close()
}

// Send writes the message to every open socket of the user. Sockets that
// fail the write are considered gone and are dropped from the registry, so
// a stale tab cannot accumulate forever.
func (m *WSConnManager) Send(userID int64, message []byte) {
	m.mu.RLock()
	conns := append([]wsConn(nil), m.conns[userID]...)
	m.mu.RUnlock()

	var dead []wsConn
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		m.Remove(userID, conn)
	}
}

// ConnectionCount reports how many sockets the user currently holds.
func (m *WSConnManager) ConnectionCount(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns[userID])
}

var GlobalWSConnManager = NewWSConnManager()
