package chat

import "time"

// DefaultTimeFormat renders a two-digit hour and minute.
const DefaultTimeFormat = "15:04"

// ReplyOffset is how much later than the user message a reply is stamped.
const ReplyOffset = time.Second

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
