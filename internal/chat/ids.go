package chat

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// messageIDs hands out ULIDs that sort in creation order, even when the
// clock stalls or steps backwards.
type messageIDs struct {
	entropy *ulid.MonotonicEntropy
	lastMs  uint64
}

func newMessageIDs() *messageIDs {
	return &messageIDs{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *messageIDs) next(now time.Time) string {
	ms := ulid.Timestamp(now)
	if ms < g.lastMs {
		ms = g.lastMs
	}
	g.lastMs = ms
	return ulid.MustNew(ms, g.entropy).String()
}

// observe moves the floor past an id issued by an earlier session.
func (g *messageIDs) observe(id string) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return
	}
	if t := parsed.Time(); t >= g.lastMs {
		g.lastMs = t + 1
	}
}

func newRoomID() string {
	return uuid.NewString()
}
