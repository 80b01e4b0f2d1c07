package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"golang.org/x/text/unicode/norm"

	"cozy-chat/internal/logging"
	"cozy-chat/internal/media"
	"cozy-chat/internal/models"
)

const (
	headerHeight   = 4
	titleHeight    = 2
	composerHeight = 5
	helpHeight     = 2
	padding        = 3
	imageScanLimit = 5 * time.Second
)

// ChatViewModel shows the active room's transcript and the composer
type ChatViewModel struct {
	room          models.Room
	pending       bool
	viewport      viewport.Model
	textarea      textarea.Model
	spinner       spinner.Model
	imageSelector OverlayModel
	attachment    string
	imageDir      string
	focused       bool
	width         int
	height        int
	mdRenderer    *glamour.TermRenderer
}

// SubmitTurn carries a composed message to the root model
type SubmitTurn struct {
	Text  string
	Image string
}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	styleOption := glamour.WithAutoStyle()
	if markdownStyle != "" {
		styleOption = glamour.WithStandardStyle(markdownStyle)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOption,
		glamour.WithWordWrap(max(width-14, 20)),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with style %q: %v, trying fallback", markdownStyle, err)

	// Last resort: try with no options (should never fail)
	renderer, err = glamour.NewTermRenderer()
	if err != nil {
		logging.Error("Critical: Failed to create basic markdown renderer: %v", err)
		return nil
	}

	return renderer
}

// safeRenderMarkdown safely renders markdown with panic recovery and fallback
func (m *ChatViewModel) safeRenderMarkdown(content string) (rendered string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
			rendered = content
		}
	}()

	if m.mdRenderer == nil || content == "" {
		return content
	}

	out, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}

	return strings.Trim(out, "\n")
}

func NewChatViewModel(room models.Room, imageDir string, width, height int) ChatViewModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	// Configure textarea key bindings - keep only essential editing keys
	ta.KeyMap.CharacterForward = key.NewBinding(key.WithKeys("right"))
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.LineStart = key.NewBinding(key.WithKeys("home"))
	ta.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end"))
	ta.KeyMap.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	ta.KeyMap.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	ta.KeyMap.LineNext = key.NewBinding()
	ta.KeyMap.LinePrevious = key.NewBinding()
	ta.KeyMap.WordForward = key.NewBinding()
	ta.KeyMap.WordBackward = key.NewBinding()
	ta.KeyMap.DeleteWordBackward = key.NewBinding()
	ta.KeyMap.DeleteWordForward = key.NewBinding()
	ta.KeyMap.DeleteAfterCursor = key.NewBinding()
	ta.KeyMap.DeleteBeforeCursor = key.NewBinding()
	ta.KeyMap.InsertNewline = key.NewBinding()

	vp := viewport.New(width, 10)
	vp.MouseWheelDelta = 2

	// Configure viewport key bindings - keep page up/down, arrows move the cursor
	vp.KeyMap.Down = key.NewBinding()
	vp.KeyMap.Up = key.NewBinding()
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := ChatViewModel{
		room:          room,
		viewport:      vp,
		textarea:      ta,
		spinner:       sp,
		imageSelector: NewOverlayModel(NewImageSelectorModel()),
		imageDir:      imageDir,
	}
	m.SetSize(width, height)
	m.SetFocused(true)
	return m
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func (m ChatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ImageSelected:
		m.attachment = msg.Path
		m.imageSelector.Hide()
		m.textarea.Focus()
		return m, nil

	case ImageSelectorClosed:
		m.imageSelector.Hide()
		m.textarea.Focus()
		return m, nil

	case ImagesLoaded:
		selector := m.imageSelector.Foreground().(ImageSelectorModel)
		selector.SetImages(msg)
		selector.SetSize(m.width, m.height)
		m.imageSelector.SetForeground(selector)
		m.imageSelector.Show()
		m.textarea.Blur()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.imageSelector.IsVisible() {
		return m, m.imageSelector.Update(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+f":
			return m, m.loadImages()

		case "ctrl+r":
			m.attachment = ""
			return m, nil

		case "enter":
			text := sanitizeInput(m.textarea.Value())
			if m.pending || (strings.TrimSpace(text) == "" && m.attachment == "") {
				return m, nil
			}
			submit := SubmitTurn{Text: strings.TrimSpace(text), Image: m.attachment}
			m.textarea.Reset()
			m.attachment = ""
			return m, func() tea.Msg {
				return submit
			}
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatViewModel) View() string {
	var b strings.Builder

	header := TitleStyle.Render("Cozy Chat") + "\n" + SubtitleStyle.Render("Your friendly AI companion")
	b.WriteString(HeaderStyle.Width(max(m.width-2, 10)).Render(header) + "\n")

	status := TitleStyle.Render(m.room.Name)
	if m.pending {
		status += statusBarStyle.Render(m.spinner.View() + " Assistant is typing...")
	}
	b.WriteString(status + "\n")

	b.WriteString(RenderPane(m.viewport.View(), false))
	b.WriteString("\n")
	b.WriteString(m.renderScrollIndicator())
	b.WriteString("\n")

	if m.attachment != "" {
		b.WriteString(AttachmentStyle.Render("Attached: "+media.DisplayName(m.attachment)) + HelpTextSimpleStyle.Render("  (Ctrl+R to remove)"))
	}
	b.WriteString("\n")
	b.WriteString(m.textarea.View() + "\n")

	helpText := "Enter: Send • Ctrl+F: Attach image • PgUp/PgDn: Scroll • Tab: Rooms • Ctrl+N: New room • Ctrl+S: Skin • Ctrl+X: Exit"
	b.WriteString(helpStyle.Render(helpText))

	return m.imageSelector.RenderOverlay(b.String())
}

// SetRoom shows room and scrolls to its newest message
func (m *ChatViewModel) SetRoom(room models.Room, pending bool) {
	m.room = room
	m.pending = pending
	m.renderMessages()
	m.viewport.GotoBottom()
}

func (m *ChatViewModel) SetFocused(focused bool) {
	m.focused = focused
	if focused {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// OverlayVisible reports whether the image picker is capturing input
func (m ChatViewModel) OverlayVisible() bool {
	return m.imageSelector.IsVisible()
}

// Attachment returns the image handle waiting to be sent
func (m ChatViewModel) Attachment() string {
	return m.attachment
}

func (m *ChatViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	viewportHeight := max(height-headerHeight-titleHeight-composerHeight-helpHeight-padding, 3)
	m.viewport.Width = max(width-4, 10)
	m.viewport.Height = viewportHeight
	m.textarea.SetWidth(max(width-2, 10))

	selector := m.imageSelector.Foreground().(ImageSelectorModel)
	selector.SetSize(width, height)
	m.imageSelector.SetForeground(selector)

	// Word wrap depends on width
	m.mdRenderer = createMarkdownRenderer(width)
	m.renderMessages()
}

// ApplySkin picks up restyled spinner and markdown after a skin change
func (m *ChatViewModel) ApplySkin() {
	m.spinner.Style = SpinnerStyle
	m.mdRenderer = createMarkdownRenderer(m.width)
	m.renderMessages()
}

func (m ChatViewModel) loadImages() tea.Cmd {
	dir := m.imageDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), imageScanLimit)
		defer cancel()

		images, err := media.ListImages(ctx, dir)
		if err != nil {
			logging.Error("Failed to list images in %s: %v", dir, err)
		}
		return ImagesLoaded{Dir: dir, Images: images, Err: err}
	}
}

func (m *ChatViewModel) renderMessages() {
	var b strings.Builder

	for _, msg := range m.room.Messages {
		var body strings.Builder
		if msg.IsUser() {
			body.WriteString(UserMessageLabelStyle.Render("You"))
		} else {
			body.WriteString(AssistantMessageLabelStyle.Render("Assistant"))
		}
		body.WriteString(" " + TimestampStyle.Render(msg.DisplayTime) + "\n")

		if msg.HasImage() {
			body.WriteString(AttachmentStyle.Render("[image] "+media.DisplayName(msg.Image)) + "\n")
		}
		if msg.Content != "" {
			body.WriteString(m.safeRenderMarkdown(msg.Content))
		}

		if msg.IsUser() {
			b.WriteString(GetUserMessageContentStyle(m.width).Render(strings.TrimRight(body.String(), "\n")))
		} else {
			b.WriteString(GetAssistantMessageContentStyle(m.width).Render(strings.TrimRight(body.String(), "\n")))
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

func (m ChatViewModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}

	scrollPercent := int(m.viewport.ScrollPercent() * 100)
	return ScrollIndicatorStyle.Render(fmt.Sprintf("Scroll: %d%% ↕", scrollPercent))
}

// sanitizeInput drops invalid UTF-8 replacement characters and normalizes to
// NFC so equal-looking text compares equal
func sanitizeInput(s string) string {
	return norm.NFC.String(strings.ReplaceAll(s, "�", ""))
}
