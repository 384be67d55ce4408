package protocol

import "time"

// timestampLayout is the wire format for every envelope timestamp.
const timestampLayout = "2006-01-02 15:04:05"

// Clock renders wall-clock timestamps at a fixed offset from UTC.
// The offset is static server configuration, not a per-user setting.
type Clock struct {
	offset time.Duration
	now    func() time.Time
}

func NewClock(offsetHours int) *Clock {
	return &Clock{
		offset: time.Duration(offsetHours) * time.Hour,
		now:    time.Now,
	}
}

func (c *Clock) Timestamp() string {
	return c.now().UTC().Add(c.offset).Format(timestampLayout)
}
