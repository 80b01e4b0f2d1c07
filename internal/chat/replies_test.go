package chat

import (
	"strings"
	"testing"
)

func TestSimulatorImageReply(t *testing.T) {
	sim := NewSimulator(1)
	for _, text := range []string{"", "look at this", "ignore the image"} {
		if got := sim.Reply(text, true); got != ImageReply {
			t.Errorf("Reply(%q, true) = %q", text, got)
		}
	}
}

func TestSimulatorTextReplyShape(t *testing.T) {
	sim := NewSimulator(7)
	for i := 0; i < 50; i++ {
		got := sim.Reply("hello", false)
		if !strings.HasSuffix(got, " "+ClosingLine) {
			t.Fatalf("reply %q missing closing line", got)
		}
		if !IsCannedReply(got) || got == ImageReply {
			t.Fatalf("reply %q is not a template reply", got)
		}
	}
}

func TestSimulatorSeedIsDeterministic(t *testing.T) {
	a, b := NewSimulator(99), NewSimulator(99)
	for i := 0; i < 20; i++ {
		ra, rb := a.Reply("x", false), b.Reply("x", false)
		if ra != rb {
			t.Fatalf("step %d: %q != %q", i, ra, rb)
		}
	}
}

func TestSimulatorCoversAllTemplates(t *testing.T) {
	sim := NewSimulator(3)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		seen[sim.Reply("q", false)] = true
	}
	if len(seen) != len(ReplyTemplates) {
		t.Errorf("saw %d distinct replies, want %d", len(seen), len(ReplyTemplates))
	}
}

func TestIsCannedReply(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{ImageReply, true},
		{ReplyTemplates[0] + " " + ClosingLine, true},
		{ReplyTemplates[0], false},
		{"something else", false},
	}
	for _, tt := range tests {
		if got := IsCannedReply(tt.content); got != tt.want {
			t.Errorf("IsCannedReply(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}
