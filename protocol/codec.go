package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/LucaMelis0/secure-chat/domain"
)

// inboundFields are the keys a well-formed client event may carry.
var inboundFields = map[string]struct{}{
	"type":        {},
	"receiver_id": {},
	"message":     {},
}

// Codec builds outbound envelopes and decodes inbound events.
// In strict mode an inbound event carrying unknown fields is rejected;
// in lenient mode the unknown fields are kept on Inbound.Extra so that
// nothing is silently dropped.
type Codec struct {
	clock  *Clock
	strict bool
}

func NewCodec(clock *Clock, strict bool) *Codec {
	return &Codec{clock: clock, strict: strict}
}

func (c *Codec) System(message string) domain.Envelope {
	return domain.Envelope{
		Type:      domain.TypeSystem,
		Timestamp: c.clock.Timestamp(),
		Message:   message,
	}
}

func (c *Codec) OnlineUsers(users []domain.OnlineUser) domain.Envelope {
	return domain.Envelope{
		Type:      domain.TypeOnlineUsers,
		Timestamp: c.clock.Timestamp(),
		Users:     users,
	}
}

func (c *Codec) Private(chatID, senderUsername, message string) domain.Envelope {
	return domain.Envelope{
		Type:           domain.TypePrivateMessage,
		Timestamp:      c.clock.Timestamp(),
		ChatID:         chatID,
		SenderUsername: senderUsername,
		Message:        message,
	}
}

func (c *Codec) Group(senderUsername, message string) domain.Envelope {
	return domain.Envelope{
		Type:           domain.TypeGroupMessage,
		Timestamp:      c.clock.Timestamp(),
		ChatID:         domain.GroupChatID,
		SenderUsername: senderUsername,
		Message:        message,
	}
}

func (c *Codec) Encode(env domain.Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeInbound parses a client event. The error paths are protocol
// violations; callers log and skip the frame, they never close over them.
func (c *Codec) DecodeInbound(data []byte) (domain.Inbound, error) {
	var in domain.Inbound

	dec := json.NewDecoder(bytes.NewReader(data))
	if c.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&in); err != nil {
		return domain.Inbound{}, fmt.Errorf("decode inbound event: %w", err)
	}
	if in.Type == "" {
		return domain.Inbound{}, fmt.Errorf("inbound event missing type")
	}

	if !c.strict {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err == nil {
			for k := range raw {
				if _, known := inboundFields[k]; known {
					delete(raw, k)
				}
			}
			if len(raw) > 0 {
				in.Extra = raw
			}
		}
	}
	return in, nil
}
