package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cozy-chat/internal/logging"
	"cozy-chat/internal/models"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrLastRoom       = errors.New("cannot delete the last remaining room")
	ErrEmptyTurn      = errors.New("turn has neither text nor image")
	ErrReplyPending   = errors.New("a reply is still pending for this room")
	ErrNoPendingReply = errors.New("no reply is pending for this room")
)

const (
	GeneralRoomID    = "general"
	GeneralRoomName  = "General Chat"
	GeneralGreeting  = "Hello! I'm your AI assistant. How can I help you today?"
	generalPreview   = "Hello! I'm your AI assistant..."
	ImagePlaceholder = "Image uploaded"
)

// RoomStore is the boundary the view layer drives.
type RoomStore interface {
	CreateRoom() models.Room
	DeleteRoom(id string) error
	SetActiveRoom(id string) error
	AppendUserTurn(roomID, text, image string) (Turn, error)
}

// Journal is notified after every successful mutation. Errors are logged and
// do not undo the in-memory change.
type Journal interface {
	RoomCreated(room models.Room) error
	RoomDeleted(id string) error
	MessageAppended(msg models.Message, preview string) error
	ActiveRoomChanged(id string) error
}

// Turn is a user message together with the reply it produced.
type Turn struct {
	User  models.Message
	Reply models.Message
}

// PendingReply is a reply that has been computed but not yet appended.
type PendingReply struct {
	RoomID    string
	Content   string
	Timestamp time.Time
	User      models.Message
}

// Store owns every room by id. It is driven by a single event loop and is not
// safe for concurrent use.
type Store struct {
	rooms      map[string]*models.Room
	order      []string
	activeID   string
	pending    map[string]bool
	clock      Clock
	replier    Replier
	timeFormat string
	journal    Journal
	ids        *messageIDs

	restored       []models.Room
	restoredActive string
}

type Option func(*Store)

func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithReplier(r Replier) Option {
	return func(s *Store) { s.replier = r }
}

func WithTimeFormat(layout string) Option {
	return func(s *Store) {
		if layout != "" {
			s.timeFormat = layout
		}
	}
}

func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithSession restores rooms saved by an earlier run. An empty slice falls
// back to the default general room.
func WithSession(rooms []models.Room, activeID string) Option {
	return func(s *Store) {
		s.restored = rooms
		s.restoredActive = activeID
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		rooms:      make(map[string]*models.Room),
		pending:    make(map[string]bool),
		clock:      SystemClock{},
		timeFormat: DefaultTimeFormat,
		ids:        newMessageIDs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.replier == nil {
		s.replier = NewSimulator(0)
	}

	if len(s.restored) > 0 {
		s.restore()
	} else {
		s.seedGeneral()
	}
	s.restored = nil

	return s
}

func (s *Store) restore() {
	for _, r := range s.restored {
		if _, dup := s.rooms[r.ID]; dup {
			logging.Error("Skipping duplicate room %s in restored session", r.ID)
			continue
		}
		room := r.Clone()
		for _, msg := range room.Messages {
			s.ids.observe(msg.ID)
		}
		s.rooms[room.ID] = &room
		s.order = append(s.order, room.ID)
	}

	s.activeID = s.order[0]
	if _, ok := s.rooms[s.restoredActive]; ok {
		s.activeID = s.restoredActive
	}
	logging.Info("Restored %d room(s), active=%s", len(s.order), s.activeID)
}

func (s *Store) seedGeneral() {
	now := s.clock.Now()
	room := &models.Room{
		ID:        GeneralRoomID,
		Name:      GeneralRoomName,
		Preview:   generalPreview,
		CreatedAt: now,
	}
	room.Messages = []models.Message{
		models.NewMessage(s.ids.next(now), room.ID, models.RoleAssistant, GeneralGreeting, "", now, s.timeFormat),
	}
	s.rooms[room.ID] = room
	s.order = append(s.order, room.ID)
	s.activeID = room.ID

	s.record("room created", func(j Journal) error { return j.RoomCreated(room.Clone()) })
	s.record("active room changed", func(j Journal) error { return j.ActiveRoomChanged(room.ID) })
}

// CreateRoom appends a new room greeted by the assistant and activates it.
func (s *Store) CreateRoom() models.Room {
	number := len(s.order) + 1
	now := s.clock.Now()
	name := fmt.Sprintf("Chat Room %d", number)

	room := &models.Room{
		ID:        newRoomID(),
		Name:      name,
		Preview:   fmt.Sprintf("Welcome to %s!", name),
		CreatedAt: now,
	}
	greeting := fmt.Sprintf("Welcome to %s! I'm here to help you.", name)
	room.Messages = []models.Message{
		models.NewMessage(s.ids.next(now), room.ID, models.RoleAssistant, greeting, "", now, s.timeFormat),
	}

	s.rooms[room.ID] = room
	s.order = append(s.order, room.ID)
	s.activeID = room.ID
	logging.Info("Created room %s (%s)", room.ID, room.Name)

	s.record("room created", func(j Journal) error { return j.RoomCreated(room.Clone()) })
	s.record("active room changed", func(j Journal) error { return j.ActiveRoomChanged(room.ID) })

	return room.Clone()
}

// DeleteRoom removes a room. The sole remaining room cannot be deleted. When
// the active room goes away the first remaining room becomes active.
func (s *Store) DeleteRoom(id string) error {
	if _, ok := s.rooms[id]; !ok {
		return ErrRoomNotFound
	}
	if len(s.order) <= 1 {
		return ErrLastRoom
	}

	delete(s.rooms, id)
	delete(s.pending, id)
	for i, rid := range s.order {
		if rid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	logging.Info("Deleted room %s", id)
	s.record("room deleted", func(j Journal) error { return j.RoomDeleted(id) })

	if s.activeID == id {
		s.activeID = s.order[0]
		s.record("active room changed", func(j Journal) error { return j.ActiveRoomChanged(s.activeID) })
	}

	return nil
}

func (s *Store) SetActiveRoom(id string) error {
	if _, ok := s.rooms[id]; !ok {
		return ErrRoomNotFound
	}
	if s.activeID == id {
		return nil
	}
	s.activeID = id
	s.record("active room changed", func(j Journal) error { return j.ActiveRoomChanged(id) })
	return nil
}

// AppendUserTurn appends the user's message and the simulated reply in one
// step.
func (s *Store) AppendUserTurn(roomID, text, image string) (Turn, error) {
	pending, err := s.BeginTurn(roomID, text, image)
	if err != nil {
		return Turn{}, err
	}
	reply, err := s.CompleteTurn(pending)
	if err != nil {
		return Turn{}, err
	}
	return Turn{User: pending.User, Reply: reply}, nil
}

// BeginTurn appends the user's message and computes the reply without
// appending it. The room accepts no further turns until CompleteTurn.
func (s *Store) BeginTurn(roomID, text, image string) (PendingReply, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return PendingReply{}, ErrRoomNotFound
	}
	if strings.TrimSpace(text) == "" && image == "" {
		return PendingReply{}, ErrEmptyTurn
	}
	if s.pending[roomID] {
		return PendingReply{}, ErrReplyPending
	}

	now := s.clock.Now()
	userMsg := models.NewMessage(s.ids.next(now), roomID, models.RoleUser, text, image, now, s.timeFormat)
	room.Messages = append(room.Messages, userMsg)
	room.Preview = text
	if text == "" {
		room.Preview = ImagePlaceholder
	}
	s.pending[roomID] = true
	logging.Debug("User turn in room %s: %d chars, image=%v", roomID, len(text), image != "")

	preview := room.Preview
	s.record("message appended", func(j Journal) error { return j.MessageAppended(userMsg, preview) })

	return PendingReply{
		RoomID:    roomID,
		Content:   s.replier.Reply(text, image != ""),
		Timestamp: now.Add(ReplyOffset),
		User:      userMsg,
	}, nil
}

// CompleteTurn appends a reply produced by BeginTurn. The reply lands in its
// own room whichever room is active; it is dropped if the room was deleted.
func (s *Store) CompleteTurn(p PendingReply) (models.Message, error) {
	room, ok := s.rooms[p.RoomID]
	if !ok {
		return models.Message{}, ErrRoomNotFound
	}
	if !s.pending[p.RoomID] {
		return models.Message{}, ErrNoPendingReply
	}

	reply := models.NewMessage(s.ids.next(s.clock.Now()), p.RoomID, models.RoleAssistant, p.Content, "", p.Timestamp, s.timeFormat)
	room.Messages = append(room.Messages, reply)
	delete(s.pending, p.RoomID)

	preview := room.Preview
	s.record("message appended", func(j Journal) error { return j.MessageAppended(reply, preview) })

	return reply, nil
}

// IsPending reports whether roomID is waiting for a reply.
func (s *Store) IsPending(roomID string) bool {
	return s.pending[roomID]
}

func (s *Store) ActiveRoomID() string {
	return s.activeID
}

func (s *Store) ActiveRoom() models.Room {
	return s.rooms[s.activeID].Clone()
}

func (s *Store) Room(id string) (models.Room, bool) {
	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, false
	}
	return room.Clone(), true
}

// Rooms returns copies of all rooms in creation order.
func (s *Store) Rooms() []models.Room {
	rooms := make([]models.Room, 0, len(s.order))
	for _, id := range s.order {
		rooms = append(rooms, s.rooms[id].Clone())
	}
	return rooms
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) record(what string, fn func(Journal) error) {
	if s.journal == nil {
		return
	}
	if err := fn(s.journal); err != nil {
		logging.Error("Journal failed to record %s: %v", what, err)
	}
}
