package chat

import (
	"errors"
	"testing"
	"time"

	"cozy-chat/internal/models"
)

var testNow = time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC)

func newTestStore(opts ...Option) *Store {
	base := []Option{
		WithClock(FixedClock{T: testNow}),
		WithReplier(NewSimulator(42)),
	}
	return NewStore(append(base, opts...)...)
}

type recordingJournal struct {
	created  []string
	deleted  []string
	appended []models.Message
	previews []string
	active   []string
	fail     error
}

func (j *recordingJournal) RoomCreated(room models.Room) error {
	j.created = append(j.created, room.ID)
	return j.fail
}

func (j *recordingJournal) RoomDeleted(id string) error {
	j.deleted = append(j.deleted, id)
	return j.fail
}

func (j *recordingJournal) MessageAppended(msg models.Message, preview string) error {
	j.appended = append(j.appended, msg)
	j.previews = append(j.previews, preview)
	return j.fail
}

func (j *recordingJournal) ActiveRoomChanged(id string) error {
	j.active = append(j.active, id)
	return j.fail
}

func TestNewStoreSeedsGeneralRoom(t *testing.T) {
	s := newTestStore()

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.ActiveRoomID() != GeneralRoomID {
		t.Errorf("ActiveRoomID() = %q, want %q", s.ActiveRoomID(), GeneralRoomID)
	}

	room := s.ActiveRoom()
	if room.Name != GeneralRoomName {
		t.Errorf("Name = %q", room.Name)
	}
	if len(room.Messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(room.Messages))
	}
	if room.Messages[0].IsUser() || room.Messages[0].Content != GeneralGreeting {
		t.Errorf("unexpected seed message: %+v", room.Messages[0])
	}
	if room.Messages[0].DisplayTime != "09:05" {
		t.Errorf("DisplayTime = %q, want 09:05", room.Messages[0].DisplayTime)
	}
}

func TestAppendUserTurnText(t *testing.T) {
	s := newTestStore()

	turn, err := s.AppendUserTurn(GeneralRoomID, "hello", "")
	if err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}

	room, _ := s.Room(GeneralRoomID)
	if len(room.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(room.Messages))
	}

	user := room.Messages[1]
	if !user.IsUser() || user.Content != "hello" || user.HasImage() {
		t.Errorf("unexpected user message: %+v", user)
	}

	reply := room.Messages[2]
	if reply.IsUser() || reply.Content == "" {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if !IsCannedReply(reply.Content) || reply.Content == ImageReply {
		t.Errorf("reply %q is not a text-template reply", reply.Content)
	}
	if !reply.Timestamp.Equal(user.Timestamp.Add(ReplyOffset)) {
		t.Errorf("reply timestamp %v, want %v", reply.Timestamp, user.Timestamp.Add(ReplyOffset))
	}
	if room.Preview != "hello" {
		t.Errorf("Preview = %q, want hello", room.Preview)
	}
	if turn.User.ID != user.ID || turn.Reply.ID != reply.ID {
		t.Errorf("returned turn does not match appended messages")
	}
}

func TestAppendUserTurnImageOnly(t *testing.T) {
	s := newTestStore()

	if _, err := s.AppendUserTurn(GeneralRoomID, "", "/tmp/cat.png"); err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}

	room, _ := s.Room(GeneralRoomID)
	if room.Preview != ImagePlaceholder {
		t.Errorf("Preview = %q, want %q", room.Preview, ImagePlaceholder)
	}
	if room.Messages[1].Image != "/tmp/cat.png" {
		t.Errorf("image handle not kept: %+v", room.Messages[1])
	}
	if room.Messages[2].Content != ImageReply {
		t.Errorf("reply = %q, want image acknowledgment", room.Messages[2].Content)
	}
}

func TestAppendUserTurnImageWithTextUsesImageReply(t *testing.T) {
	s := newTestStore()

	turn, err := s.AppendUserTurn(GeneralRoomID, "what is this?", "cat.png")
	if err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}
	if turn.Reply.Content != ImageReply {
		t.Errorf("reply = %q", turn.Reply.Content)
	}
	if room, _ := s.Room(GeneralRoomID); room.Preview != "what is this?" {
		t.Errorf("Preview = %q", room.Preview)
	}
}

func TestAppendUserTurnRejections(t *testing.T) {
	tests := []struct {
		name   string
		roomID string
		text   string
		image  string
		want   error
	}{
		{name: "unknown room", roomID: "nope", text: "hi", want: ErrRoomNotFound},
		{name: "empty text and image", roomID: GeneralRoomID, want: ErrEmptyTurn},
		{name: "whitespace only", roomID: GeneralRoomID, text: "   ", want: ErrEmptyTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.AppendUserTurn(tt.roomID, tt.text, tt.image)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if room, _ := s.Room(GeneralRoomID); len(room.Messages) != 1 {
				t.Errorf("rejected turn changed the room: %d messages", len(room.Messages))
			}
		})
	}
}

func TestCreateRoom(t *testing.T) {
	s := newTestStore()

	room := s.CreateRoom()
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.ActiveRoomID() != room.ID {
		t.Errorf("new room not active")
	}
	if room.Name != "Chat Room 2" {
		t.Errorf("Name = %q, want Chat Room 2", room.Name)
	}
	if len(room.Messages) != 1 || room.Messages[0].IsUser() || room.Messages[0].Content == "" {
		t.Errorf("unexpected seed: %+v", room.Messages)
	}
	if room.Messages[0].Content != "Welcome to Chat Room 2! I'm here to help you." {
		t.Errorf("greeting = %q", room.Messages[0].Content)
	}
	if room.Preview != "Welcome to Chat Room 2!" {
		t.Errorf("Preview = %q", room.Preview)
	}
}

func TestCreateRoomIDsStayUniqueAfterDelete(t *testing.T) {
	s := newTestStore()
	a := s.CreateRoom()
	b := s.CreateRoom()
	if err := s.DeleteRoom(a.ID); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}
	c := s.CreateRoom()

	if c.ID == b.ID || c.ID == a.ID {
		t.Errorf("room id reused: %s", c.ID)
	}
	if c.Name != "Chat Room 3" {
		t.Errorf("Name = %q, want Chat Room 3", c.Name)
	}
}

func TestDeleteRoom(t *testing.T) {
	t.Run("last room is refused", func(t *testing.T) {
		s := newTestStore()
		if err := s.DeleteRoom(GeneralRoomID); !errors.Is(err, ErrLastRoom) {
			t.Errorf("error = %v, want ErrLastRoom", err)
		}
		if s.Len() != 1 {
			t.Errorf("room set changed")
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		s := newTestStore()
		s.CreateRoom()
		if err := s.DeleteRoom("missing"); !errors.Is(err, ErrRoomNotFound) {
			t.Errorf("error = %v, want ErrRoomNotFound", err)
		}
	})

	t.Run("active room moves to first remaining", func(t *testing.T) {
		s := newTestStore()
		second := s.CreateRoom()
		third := s.CreateRoom()

		if err := s.DeleteRoom(third.ID); err != nil {
			t.Fatalf("DeleteRoom() error = %v", err)
		}
		if s.ActiveRoomID() != GeneralRoomID {
			t.Errorf("ActiveRoomID() = %q, want general", s.ActiveRoomID())
		}
		if _, ok := s.Room(third.ID); ok {
			t.Errorf("deleted room still present")
		}
		for _, r := range s.Rooms() {
			if r.ID == third.ID {
				t.Errorf("deleted room listed")
			}
		}
		if s.Len() != 2 || s.Rooms()[1].ID != second.ID {
			t.Errorf("unexpected order after delete")
		}
	})

	t.Run("inactive room keeps active pointer", func(t *testing.T) {
		s := newTestStore()
		second := s.CreateRoom()
		if err := s.DeleteRoom(GeneralRoomID); err != nil {
			t.Fatalf("DeleteRoom() error = %v", err)
		}
		if s.ActiveRoomID() != second.ID {
			t.Errorf("ActiveRoomID() = %q, want %q", s.ActiveRoomID(), second.ID)
		}
	})
}

func TestRoomSetNeverEmpty(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 3; i++ {
		s.CreateRoom()
	}
	for _, r := range s.Rooms() {
		_ = s.DeleteRoom(r.ID)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Room(s.ActiveRoomID()); !ok {
		t.Errorf("active id %q does not name a room", s.ActiveRoomID())
	}
}

func TestSetActiveRoom(t *testing.T) {
	s := newTestStore()
	room := s.CreateRoom()

	if err := s.SetActiveRoom(GeneralRoomID); err != nil {
		t.Fatalf("SetActiveRoom() error = %v", err)
	}
	if s.ActiveRoomID() != GeneralRoomID {
		t.Errorf("ActiveRoomID() = %q", s.ActiveRoomID())
	}

	if err := s.SetActiveRoom("ghost"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("error = %v, want ErrRoomNotFound", err)
	}
	if s.ActiveRoomID() != GeneralRoomID {
		t.Errorf("unknown id changed the active room to %q", s.ActiveRoomID())
	}

	if err := s.SetActiveRoom(room.ID); err != nil || s.ActiveRoomID() != room.ID {
		t.Errorf("switch back failed: %v", err)
	}
}

func TestDeferredTurn(t *testing.T) {
	s := newTestStore()

	pending, err := s.BeginTurn(GeneralRoomID, "first", "")
	if err != nil {
		t.Fatalf("BeginTurn() error = %v", err)
	}
	if !s.IsPending(GeneralRoomID) {
		t.Errorf("room should be pending")
	}
	if room, _ := s.Room(GeneralRoomID); len(room.Messages) != 2 {
		t.Errorf("expected only the user message to land, got %d messages", len(room.Messages))
	}

	if _, err := s.BeginTurn(GeneralRoomID, "second", ""); !errors.Is(err, ErrReplyPending) {
		t.Errorf("error = %v, want ErrReplyPending", err)
	}

	// A pending reply still lands in its room after the user switches away.
	other := s.CreateRoom()
	if _, err := s.CompleteTurn(pending); err != nil {
		t.Fatalf("CompleteTurn() error = %v", err)
	}
	if s.ActiveRoomID() != other.ID {
		t.Errorf("completing a turn must not change the active room")
	}
	room, _ := s.Room(GeneralRoomID)
	if len(room.Messages) != 3 || room.Messages[2].Content != pending.Content {
		t.Errorf("reply did not land: %+v", room.Messages)
	}

	if _, err := s.CompleteTurn(pending); !errors.Is(err, ErrNoPendingReply) {
		t.Errorf("double completion error = %v, want ErrNoPendingReply", err)
	}
	if _, err := s.BeginTurn(GeneralRoomID, "second", ""); err != nil {
		t.Errorf("room should accept a new turn: %v", err)
	}
}

func TestPendingReplyDroppedWhenRoomDeleted(t *testing.T) {
	s := newTestStore()
	room := s.CreateRoom()

	pending, err := s.BeginTurn(room.ID, "hi", "")
	if err != nil {
		t.Fatalf("BeginTurn() error = %v", err)
	}
	if err := s.DeleteRoom(room.ID); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}
	if _, err := s.CompleteTurn(pending); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("error = %v, want ErrRoomNotFound", err)
	}
}

func TestMessageIDsIncrease(t *testing.T) {
	s := newTestStore()
	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.AppendUserTurn(GeneralRoomID, text, ""); err != nil {
			t.Fatalf("AppendUserTurn() error = %v", err)
		}
	}

	room, _ := s.Room(GeneralRoomID)
	seen := make(map[string]bool)
	for i, msg := range room.Messages {
		if seen[msg.ID] {
			t.Errorf("duplicate id %s", msg.ID)
		}
		seen[msg.ID] = true
		if i > 0 && msg.ID <= room.Messages[i-1].ID {
			t.Errorf("id %s not greater than %s", msg.ID, room.Messages[i-1].ID)
		}
	}
}

func TestRoomsReturnsCopies(t *testing.T) {
	s := newTestStore()
	rooms := s.Rooms()
	rooms[0].Messages[0].Content = "tampered"
	rooms[0].Name = "tampered"

	room, _ := s.Room(GeneralRoomID)
	if room.Name == "tampered" || room.Messages[0].Content == "tampered" {
		t.Errorf("store state leaked through Rooms()")
	}
}

func TestJournalNotifications(t *testing.T) {
	j := &recordingJournal{}
	s := newTestStore(WithJournal(j))

	if len(j.created) != 1 || j.created[0] != GeneralRoomID {
		t.Fatalf("seed not journaled: %v", j.created)
	}

	room := s.CreateRoom()
	if _, err := s.AppendUserTurn(room.ID, "", "pic.png"); err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}
	if err := s.DeleteRoom(room.ID); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}

	if len(j.appended) != 2 {
		t.Errorf("expected 2 appended messages, got %d", len(j.appended))
	}
	if j.previews[0] != ImagePlaceholder {
		t.Errorf("preview = %q", j.previews[0])
	}
	if len(j.deleted) != 1 || j.deleted[0] != room.ID {
		t.Errorf("deleted = %v", j.deleted)
	}
	want := []string{GeneralRoomID, room.ID, GeneralRoomID}
	if len(j.active) != len(want) {
		t.Fatalf("active changes = %v, want %v", j.active, want)
	}
	for i := range want {
		if j.active[i] != want[i] {
			t.Errorf("active[%d] = %q, want %q", i, j.active[i], want[i])
		}
	}
}

func TestJournalFailureKeepsState(t *testing.T) {
	j := &recordingJournal{fail: errors.New("disk full")}
	s := newTestStore(WithJournal(j))

	if _, err := s.AppendUserTurn(GeneralRoomID, "hi", ""); err != nil {
		t.Fatalf("journal failure leaked into AppendUserTurn: %v", err)
	}
	if room, _ := s.Room(GeneralRoomID); len(room.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(room.Messages))
	}
}

func TestRestoreSession(t *testing.T) {
	original := newTestStore()
	second := original.CreateRoom()
	if _, err := original.AppendUserTurn(second.ID, "persist me", ""); err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}

	restored := newTestStore(WithSession(original.Rooms(), second.ID))
	if restored.Len() != 2 || restored.ActiveRoomID() != second.ID {
		t.Fatalf("unexpected restore: len=%d active=%s", restored.Len(), restored.ActiveRoomID())
	}

	turn, err := restored.AppendUserTurn(second.ID, "after restart", "")
	if err != nil {
		t.Fatalf("AppendUserTurn() error = %v", err)
	}
	room, _ := original.Room(second.ID)
	last, _ := room.LastMessage()
	if turn.User.ID <= last.ID {
		t.Errorf("new id %s does not sort after restored id %s", turn.User.ID, last.ID)
	}
}

func TestRestoreSessionUnknownActiveFallsBack(t *testing.T) {
	rooms := newTestStore().Rooms()
	s := newTestStore(WithSession(rooms, "gone"))
	if s.ActiveRoomID() != GeneralRoomID {
		t.Errorf("ActiveRoomID() = %q, want general", s.ActiveRoomID())
	}
}

func TestStoreSatisfiesRoomStore(t *testing.T) {
	var _ RoomStore = newTestStore()
}
