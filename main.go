package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cozy-chat/internal/chat"
	"cozy-chat/internal/config"
	"cozy-chat/internal/console"
	"cozy-chat/internal/logging"
	"cozy-chat/internal/storage"
	"cozy-chat/internal/ui"
)

const sidebarWidth = 32

type pane int

const (
	paneSidebar pane = iota
	paneChat
)

// ReplyReady fires once the reply delay has elapsed
type ReplyReady struct {
	Pending chat.PendingReply
}

type model struct {
	store *chat.Store
	delay time.Duration

	// UI models
	roomList   ui.RoomListModel
	chatView   ui.ChatViewModel
	skinPicker ui.OverlayModel

	focus pane

	// Screen size
	width  int
	height int

	// Transient notice shown under the panes
	status string
}

var (
	plainMode  = flag.Bool("plain", false, "Use the line-oriented console instead of the full-screen UI")
	configPath = flag.String("config", "", "Path to config file (default ~/.cozy-chat/config.yaml)")
	skinFlag   = flag.String("skin", "", "Skin to start with: utility or material")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	var saveErr error
	if errors.Is(err, config.ErrNotSaved) {
		saveErr, err = err, nil
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *skinFlag != "" {
		cfg.Skin = *skinFlag
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid -skin: %v", err)
		}
	}

	if err := logging.InitLogger(cfg.LogDir, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	if saveErr != nil {
		logging.Error("Running with default config: %v", saveErr)
	}

	opts := []chat.Option{
		chat.WithClock(chat.SystemClock{}),
		chat.WithReplier(chat.NewSimulator(cfg.RandomSeed)),
		chat.WithTimeFormat(cfg.TimeFormat),
	}

	if cfg.Persist {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}

		sessionStore, err := storage.NewBadgerStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}
		defer sessionStore.Close()

		rooms, activeID, err := sessionStore.LoadSession(context.Background())
		if err != nil {
			log.Fatalf("Failed to load session: %v", err)
		}
		opts = append(opts,
			chat.WithSession(rooms, activeID),
			chat.WithJournal(storage.NewJournal(sessionStore)),
		)
	}

	store := chat.NewStore(opts...)
	delay := time.Duration(cfg.ReplyDelayMs) * time.Millisecond

	if *plainMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := console.New(store, os.Stdin, os.Stdout, delay).Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Console stopped: %v", err)
		}
		return
	}

	if err := ui.ApplySkin(cfg.Skin); err != nil {
		log.Fatalf("Failed to apply skin: %v", err)
	}

	initialModel := newModel(store, cfg.ImageDir, delay, 80, 24)

	// Run the program
	p := tea.NewProgram(initialModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func newModel(store *chat.Store, imageDir string, delay time.Duration, width, height int) model {
	m := model{
		store:      store,
		delay:      delay,
		roomList:   ui.NewRoomListModel(store.Rooms(), store.ActiveRoomID(), sidebarWidth, height),
		chatView:   ui.NewChatViewModel(store.ActiveRoom(), imageDir, width-sidebarWidth, height),
		skinPicker: ui.NewOverlayModel(ui.NewSkinSelectModel(ui.CurrentSkin())),
		focus:      paneChat,
		width:      width,
		height:     height,
	}
	m.layout()
	return m
}

func (m model) Init() tea.Cmd {
	return m.chatView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "ctrl+x" {
			return m, tea.Quit
		}

		if m.skinPicker.IsVisible() {
			return m, m.skinPicker.Update(msg)
		}
		if m.chatView.OverlayVisible() {
			return m.updateChatView(msg)
		}

		switch msg.String() {
		case "tab":
			if m.focus == paneChat {
				m.setFocus(paneSidebar)
			} else {
				m.setFocus(paneChat)
			}
			return m, nil

		case "esc":
			m.setFocus(paneSidebar)
			return m, nil

		case "ctrl+n":
			return m, func() tea.Msg { return ui.CreateRoom{} }

		case "ctrl+s":
			m.skinPicker.SetForeground(ui.NewSkinSelectModel(ui.CurrentSkin()))
			m.skinPicker.Show()
			return m, nil
		}

	case ui.RoomSelected:
		if err := m.store.SetActiveRoom(msg.RoomID); err != nil {
			m.status = fmt.Sprintf("Cannot open room: %v", err)
			return m, nil
		}
		m.status = ""
		m.refresh()
		m.setFocus(paneChat)
		return m, nil

	case ui.CreateRoom:
		room := m.store.CreateRoom()
		m.status = ""
		m.refresh()
		m.setFocus(paneChat)
		logging.Debug("UI created room %s", room.ID)
		return m, nil

	case ui.DeleteRoom:
		if err := m.store.DeleteRoom(msg.RoomID); err != nil {
			if errors.Is(err, chat.ErrLastRoom) {
				m.status = "The last room cannot be deleted"
			} else {
				m.status = fmt.Sprintf("Cannot delete room: %v", err)
			}
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, nil

	case ui.SubmitTurn:
		pending, err := m.store.BeginTurn(m.store.ActiveRoomID(), msg.Text, msg.Image)
		if err != nil {
			m.status = fmt.Sprintf("Message not sent: %v", err)
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, m.replyAfterDelay(pending)

	case ReplyReady:
		if _, err := m.store.CompleteTurn(msg.Pending); err != nil {
			// The room was deleted while the assistant was "typing"
			logging.Info("Dropped reply for room %s: %v", msg.Pending.RoomID, err)
			return m, nil
		}
		m.refresh()
		return m, nil

	case ui.SkinSelected:
		m.skinPicker.Hide()
		if err := ui.ApplySkin(msg.Skin); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.roomList.ApplySkin()
		m.chatView.ApplySkin()
		return m, nil

	case ui.SkinSelectClosed:
		m.skinPicker.Hide()
		return m, nil

	case ui.ImagesLoaded, ui.ImageSelected, ui.ImageSelectorClosed:
		return m.updateChatView(msg)
	}

	// Delegate to the focused pane
	if _, ok := msg.(tea.KeyMsg); ok && m.focus == paneSidebar {
		newModel, cmd := m.roomList.Update(msg)
		m.roomList = newModel.(ui.RoomListModel)
		return m, cmd
	}
	return m.updateChatView(msg)
}

func (m model) updateChatView(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.chatView.Update(msg)
	m.chatView = newModel.(ui.ChatViewModel)
	return m, cmd
}

func (m model) replyAfterDelay(pending chat.PendingReply) tea.Cmd {
	if m.delay <= 0 {
		return func() tea.Msg { return ReplyReady{Pending: pending} }
	}
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return ReplyReady{Pending: pending}
	})
}

// refresh pushes the store's current state into both panes
func (m *model) refresh() {
	activeID := m.store.ActiveRoomID()
	m.roomList.RefreshRooms(m.store.Rooms(), activeID)
	m.chatView.SetRoom(m.store.ActiveRoom(), m.store.IsPending(activeID))
}

func (m *model) setFocus(p pane) {
	m.focus = p
	m.chatView.SetFocused(p == paneChat)
}

func (m *model) layout() {
	// Borders take two columns and two rows per pane, status line one row
	m.roomList.SetSize(sidebarWidth-2, max(m.height-3, 5))
	m.chatView.SetSize(max(m.width-sidebarWidth, 20), max(m.height-1, 10))
}

func (m model) View() string {
	sidebar := ui.RenderPane(m.roomList.View(), m.focus == paneSidebar)
	view := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.chatView.View())

	if m.status != "" {
		view += "\n" + ui.RenderError(m.status)
	}

	return m.skinPicker.RenderOverlay(view)
}
