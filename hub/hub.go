package hub

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/LucaMelis0/secure-chat/domain"
	"github.com/LucaMelis0/secure-chat/protocol"
)

// ErrSessionActive reports an admission attempt for a username that
// already has a different live connection.
var ErrSessionActive = errors.New("session already active elsewhere")

// Manager orchestrates the connection lifecycle and message routing.
// One mutex guards presence, table, and rooms together for the whole of
// every operation; the cross-table invariants only hold when no reader
// can observe the three structures between partial updates. Sends inside
// the critical section are safe because connections buffer writes and
// fail fast instead of blocking.
type Manager struct {
	mu       sync.Mutex
	presence *Presence
	table    *Table
	rooms    *Rooms
	codec    *protocol.Codec
}

func New(codec *protocol.Codec) *Manager {
	return &Manager{
		presence: NewPresence(),
		table:    NewTable(),
		rooms:    NewRooms(),
		codec:    codec,
	}
}

// Connect admits conn and announces it to everyone, the newcomer
// included. The username must have been authenticated upstream. On
// ErrSessionActive nothing was registered and the existing session is
// untouched.
func (m *Manager) Connect(conn domain.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.presence.TryActivate(conn.Username(), conn.ID()) {
		slog.Warn("session collision", "clientId", conn.ID(), "username", conn.Username())
		return ErrSessionActive
	}
	m.table.Register(conn)
	slog.Info("client connected",
		"clientId", conn.ID(), "username", conn.Username(), "clients", m.table.Len())

	m.broadcast(m.codec.System(conn.Username() + " has joined the chat"))
	m.broadcastOnlineUsers()
	return nil
}

// Disconnect unwinds all state held for conn. It is safe to call from
// any error path; a second call, or a call for a superseded connection,
// is a no-op so a stale close can never evict the username's newer
// session.
func (m *Manager) Disconnect(conn domain.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connectionID := conn.ID()
	current, ok := m.table.Get(connectionID)
	if !ok {
		return
	}
	username := current.Username()
	if active, ok := m.presence.ActiveConnectionOf(username); !ok || active != connectionID {
		return
	}

	m.presence.Deactivate(username)
	m.table.Unregister(connectionID)
	m.rooms.DropConnection(connectionID)
	slog.Info("client disconnected",
		"clientId", connectionID, "username", username, "clients", m.table.Len())

	m.broadcast(m.codec.System(username + " has left the chat"))
	m.broadcastOnlineUsers()
}

// RouteGroupMessage fans text out to every active connection except the
// sender. An unknown sender is a race with a completed disconnect, not
// an error.
func (m *Manager) RouteGroupMessage(senderID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sender, ok := m.table.Get(senderID)
	if !ok {
		slog.Debug("group message from dead connection", "clientId", senderID)
		return
	}
	data, err := m.codec.Encode(m.codec.Group(sender.Username(), text))
	if err != nil {
		slog.Error("encode group message", "error", err)
		return
	}
	for _, conn := range m.table.All() {
		if conn.ID() == senderID {
			continue
		}
		m.deliver(conn, data)
	}
}

// RoutePrivateMessage delivers text to receiverID and echoes a copy back
// to the sender flagged is_self, so the sender's client renders its own
// message without a separate local echo path. A vanished peer on either
// end makes the whole call a no-op.
func (m *Manager) RoutePrivateMessage(senderID, receiverID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if senderID == receiverID {
		slog.Debug("private message to self dropped", "clientId", senderID)
		return
	}
	sender, ok := m.table.Get(senderID)
	if !ok {
		slog.Debug("private message from dead connection", "clientId", senderID)
		return
	}
	receiver, ok := m.table.Get(receiverID)
	if !ok {
		slog.Debug("private message to dead connection",
			"clientId", senderID, "receiverId", receiverID)
		return
	}

	chatID := m.rooms.EnsureRoom(senderID, receiverID)
	env := m.codec.Private(chatID, sender.Username(), text)

	data, err := m.codec.Encode(env)
	if err != nil {
		slog.Error("encode private message", "error", err)
		return
	}
	m.deliver(receiver, data)

	env.IsSelf = true
	echo, err := m.codec.Encode(env)
	if err != nil {
		slog.Error("encode private echo", "error", err)
		return
	}
	m.deliver(sender, echo)
}

// BroadcastOnlineUsers pushes a fresh full snapshot to every client.
func (m *Manager) BroadcastOnlineUsers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastOnlineUsers()
}

func (m *Manager) IsOnline(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presence.IsActive(username)
}

func (m *Manager) Stats() (clients, rooms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Len(), m.rooms.Len()
}

// broadcast sends one envelope to every active connection. Failures are
// isolated per recipient; one dead peer never aborts the fan-out.
func (m *Manager) broadcast(env domain.Envelope) {
	data, err := m.codec.Encode(env)
	if err != nil {
		slog.Error("encode broadcast", "type", env.Type, "error", err)
		return
	}
	for _, conn := range m.table.All() {
		m.deliver(conn, data)
	}
}

func (m *Manager) broadcastOnlineUsers() {
	m.broadcast(m.codec.OnlineUsers(m.table.Snapshot()))
}

func (m *Manager) deliver(conn domain.Connection, data []byte) {
	if err := conn.Send(data); err != nil {
		slog.Warn("delivery failure", "clientId", conn.ID(), "error", err)
	}
}
