package chat

import (
	"math/rand/v2"
	"time"
)

const (
	ImageReply  = "I can see the image you've shared! That's interesting. Could you tell me more about what you'd like to discuss regarding this image?"
	ClosingLine = "Feel free to ask me anything else you'd like to know!"
)

// ReplyTemplates are the openings the simulator picks from for text-only turns.
var ReplyTemplates = []string{
	"That's a great question! Let me think about that...",
	"I understand what you're asking. Here's my perspective:",
	"Interesting point! I'd be happy to help with that.",
	"Thanks for sharing that with me. Here's what I think:",
	"I see what you mean. Let me provide some insights on that topic.",
}

// Replier produces the assistant's answer to a user submission.
type Replier interface {
	Reply(text string, hasImage bool) string
}

// Simulator is a canned Replier. It never looks at the text or the image.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator returns a Simulator seeded with seed. A zero seed uses the
// current time.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}
}

func (s *Simulator) Reply(text string, hasImage bool) string {
	if hasImage {
		return ImageReply
	}
	return ReplyTemplates[s.rng.IntN(len(ReplyTemplates))] + " " + ClosingLine
}

// IsCannedReply reports whether content could have been produced by Simulator.
func IsCannedReply(content string) bool {
	if content == ImageReply {
		return true
	}
	for _, t := range ReplyTemplates {
		if content == t+" "+ClosingLine {
			return true
		}
	}
	return false
}
