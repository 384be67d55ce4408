package protocol

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucaMelis0/secure-chat/domain"
)

type mockConn struct {
	id       string
	username string
}

func (m *mockConn) ID() string             { return m.id }
func (m *mockConn) Username() string       { return m.username }
func (m *mockConn) Send(data []byte) error { return nil }
func (m *mockConn) Close() error           { return nil }

type routedCall struct {
	kind       string
	senderID   string
	receiverID string
	text       string
}

type mockManager struct {
	calls []routedCall
	mu    sync.Mutex
}

func (m *mockManager) Connect(conn domain.Connection) error { return nil }
func (m *mockManager) Disconnect(conn domain.Connection)    {}
func (m *mockManager) IsOnline(username string) bool        { return false }
func (m *mockManager) Stats() (int, int)                    { return 0, 0 }

func (m *mockManager) RouteGroupMessage(senderID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, routedCall{kind: "group", senderID: senderID, text: text})
}

func (m *mockManager) RoutePrivateMessage(senderID, receiverID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, routedCall{
		kind: "private", senderID: senderID, receiverID: receiverID, text: text,
	})
}

func (m *mockManager) getCalls() []routedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestHandler(manager *mockManager) *Handler {
	return NewHandler(manager, NewCodec(fixedClock(1), true))
}

func TestHandler_PrivateMessage(t *testing.T) {
	manager := &mockManager{}
	handler := newTestHandler(manager)
	conn := &mockConn{id: "A1", username: "alice"}

	handler.Handle(conn, []byte(`{"type":"private_message","receiver_id":"B1","message":"hi"}`))

	calls := manager.getCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, routedCall{kind: "private", senderID: "A1", receiverID: "B1", text: "hi"}, calls[0])
}

func TestHandler_GroupMessage(t *testing.T) {
	manager := &mockManager{}
	handler := newTestHandler(manager)
	conn := &mockConn{id: "A1", username: "alice"}

	handler.Handle(conn, []byte(`{"type":"group_message","message":"hello all"}`))

	calls := manager.getCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, routedCall{kind: "group", senderID: "A1", text: "hello all"}, calls[0])
}

func TestHandler_IgnoresBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `not json`},
		{"unknown type", `{"type":"shout","message":"HI"}`},
		{"unknown field", `{"type":"group_message","message":"hi","volume":11}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &mockManager{}
			handler := newTestHandler(manager)
			conn := &mockConn{id: "A1", username: "alice"}

			handler.Handle(conn, []byte(tt.data))

			assert.Empty(t, manager.getCalls())
		})
	}
}
