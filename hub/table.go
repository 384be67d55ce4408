package hub

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/LucaMelis0/secure-chat/domain"
)

// Table maps connection ids to live connections; it is the authority for
// who can receive. Iteration follows registration order, which drives
// the online-users display only, never correctness.
type Table struct {
	conns map[string]domain.Connection
	order []string
}

func NewTable() *Table {
	return &Table{conns: make(map[string]domain.Connection)}
}

func (t *Table) Register(conn domain.Connection) {
	if _, ok := t.conns[conn.ID()]; !ok {
		t.order = append(t.order, conn.ID())
	}
	t.conns[conn.ID()] = conn
}

// Unregister removes the connection and reports the username it carried.
func (t *Table) Unregister(connectionID string) (string, bool) {
	conn, ok := t.conns[connectionID]
	if !ok {
		return "", false
	}
	delete(t.conns, connectionID)
	for i, id := range t.order {
		if id == connectionID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return conn.Username(), true
}

func (t *Table) Get(connectionID string) (domain.Connection, bool) {
	conn, ok := t.conns[connectionID]
	return conn, ok
}

// All returns the live connections in registration order.
func (t *Table) All() []domain.Connection {
	return lo.Map(t.order, func(id string, _ int) domain.Connection {
		return t.conns[id]
	})
}

// Snapshot shapes the current connections into online_users entries.
func (t *Table) Snapshot() []domain.OnlineUser {
	return lo.Map(t.order, func(id string, _ int) domain.OnlineUser {
		return domain.OnlineUser{ClientID: id, Username: t.conns[id].Username()}
	})
}

// Send delivers one payload to one connection. A closed or saturated
// transport surfaces as an error for the caller to report, not swallow.
func (t *Table) Send(connectionID string, data []byte) error {
	conn, ok := t.conns[connectionID]
	if !ok {
		return fmt.Errorf("connection %s not registered", connectionID)
	}
	return conn.Send(data)
}

func (t *Table) Len() int {
	return len(t.conns)
}
