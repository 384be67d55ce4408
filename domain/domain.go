package domain

// Event types carried by the Envelope "type" field.
const (
	TypeSystem         = "system"
	TypeOnlineUsers    = "online_users"
	TypePrivateMessage = "private_message"
	TypeGroupMessage   = "group_message"
)

// GroupChatID is the chat_id stamped on every group broadcast.
const GroupChatID = "group"

// Envelope is the typed, timestamped wrapper for every outbound event.
type Envelope struct {
	Type           string       `json:"type"`
	Timestamp      string       `json:"timestamp"`
	Message        string       `json:"message,omitempty"`
	ChatID         string       `json:"chat_id,omitempty"`
	SenderUsername string       `json:"sender_username,omitempty"`
	Users          []OnlineUser `json:"users,omitempty"`
	IsSelf         bool         `json:"is_self,omitempty"`
}

// OnlineUser is one entry of the online_users snapshot.
type OnlineUser struct {
	ClientID string `json:"client_id"`
	Username string `json:"username"`
}

// Inbound is a client-to-server event read off the transport.
// Extra holds unknown fields when the codec runs in lenient mode.
type Inbound struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiver_id,omitempty"`
	Message    string `json:"message"`

	Extra map[string]any `json:"-"`
}

// Connection is one live transport session. The id is supplied by the
// connecting client at handshake time, the username by the auth layer.
// Send must be safe for concurrent use and must fail fast instead of
// blocking when the peer cannot keep up.
type Connection interface {
	ID() string
	Username() string
	Send(data []byte) error
	Close() error
}

// SessionManager owns presence, connection, and private-room state.
// Connect enforces the single-active-session-per-user rule.
type SessionManager interface {
	Connect(conn Connection) error
	Disconnect(conn Connection)
	RouteGroupMessage(senderID, text string)
	RoutePrivateMessage(senderID, receiverID, text string)
	IsOnline(username string) bool
	Stats() (clients, rooms int)
}

// MessageHandler consumes raw inbound frames from a connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
