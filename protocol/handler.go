package protocol

import (
	"log/slog"

	"github.com/LucaMelis0/secure-chat/domain"
)

// Handler turns raw inbound frames into routing calls on the session
// manager. A frame referencing a connection that just went away is a
// race with disconnect, not an error; the manager treats it as a no-op.
type Handler struct {
	manager domain.SessionManager
	codec   *Codec
}

func NewHandler(manager domain.SessionManager, codec *Codec) *Handler {
	return &Handler{manager: manager, codec: codec}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	in, err := h.codec.DecodeInbound(data)
	if err != nil {
		slog.Warn("invalid message", "clientId", conn.ID(), "error", err)
		return
	}

	switch in.Type {
	case domain.TypePrivateMessage:
		h.manager.RoutePrivateMessage(conn.ID(), in.ReceiverID, in.Message)
	case domain.TypeGroupMessage:
		h.manager.RouteGroupMessage(conn.ID(), in.Message)
	default:
		slog.Warn("unknown message type", "clientId", conn.ID(), "type", in.Type)
	}
}
