package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"cozy-chat/internal/models"
)

// RoomListModel is the "Chat Rooms" sidebar
type RoomListModel struct {
	list     list.Model
	rooms    []models.Room
	activeID string
	width    int
	height   int
}

type roomItem struct {
	room   models.Room
	active bool
}

func (i roomItem) Title() string {
	if i.active {
		return "● " + i.room.Name
	}
	return i.room.Name
}
func (i roomItem) Description() string { return i.room.Preview }
func (i roomItem) FilterValue() string { return i.room.Name }

// RoomSelected asks the root model to switch the active room
type RoomSelected struct {
	RoomID string
}

// CreateRoom asks the root model to add a room
type CreateRoom struct{}

// DeleteRoom asks the root model to remove a room
type DeleteRoom struct {
	RoomID string
}

func NewRoomListModel(rooms []models.Room, activeID string, width, height int) RoomListModel {
	l := list.New(nil, CreateThemedDelegate(), width, height)
	l.Title = "Chat Rooms"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	ConfigureListStyles(&l)

	// Disable all built-in key bindings except arrows
	l.KeyMap.CursorUp = key.NewBinding(key.WithKeys("up"))
	l.KeyMap.CursorDown = key.NewBinding(key.WithKeys("down"))
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup"))
	l.KeyMap.GoToStart = key.NewBinding()
	l.KeyMap.GoToEnd = key.NewBinding()
	l.KeyMap.Filter = key.NewBinding()
	l.KeyMap.ClearFilter = key.NewBinding()
	l.KeyMap.ShowFullHelp = key.NewBinding()
	l.KeyMap.CloseFullHelp = key.NewBinding()
	l.KeyMap.Quit = key.NewBinding()
	l.KeyMap.ForceQuit = key.NewBinding()

	m := RoomListModel{
		list:   l,
		width:  width,
		height: height,
	}
	m.RefreshRooms(rooms, activeID)
	return m
}

func (m RoomListModel) Init() tea.Cmd {
	return nil
}

func (m RoomListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			room, ok := m.Highlighted()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return RoomSelected{RoomID: room.ID}
			}

		case "ctrl+d":
			room, ok := m.Highlighted()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return DeleteRoom{RoomID: room.ID}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m RoomListModel) View() string {
	return m.list.View()
}

func (m *RoomListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// Highlighted returns the room under the cursor
func (m RoomListModel) Highlighted() (models.Room, bool) {
	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return models.Room{}, false
	}
	return selectedItem.(roomItem).room, true
}

// RefreshRooms replaces the listed rooms and moves the cursor to the active one
func (m *RoomListModel) RefreshRooms(rooms []models.Room, activeID string) {
	m.rooms = rooms
	m.activeID = activeID

	items := make([]list.Item, len(rooms))
	cursor := 0
	for i, r := range rooms {
		items[i] = roomItem{room: r, active: r.ID == activeID}
		if r.ID == activeID {
			cursor = i
		}
	}
	m.list.SetItems(items)
	m.list.Select(cursor)
}

// ApplySkin restyles the list after the skin changed
func (m *RoomListModel) ApplySkin() {
	m.list.SetDelegate(CreateThemedDelegate())
	ConfigureListStyles(&m.list)
}
