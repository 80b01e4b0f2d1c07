package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"

	"cozy-chat/internal/config"
)

// palette is the handful of colors a skin is built from
type palette struct {
	primary lipgloss.TerminalColor
	accent  lipgloss.TerminalColor
	fg      lipgloss.TerminalColor
	bg      lipgloss.TerminalColor
	muted   lipgloss.TerminalColor
	border  lipgloss.TerminalColor
	danger  lipgloss.TerminalColor

	// glamour standard style name; empty means auto-detect
	markdown string
}

var currentSkin string

// Common style elements used across all views. ApplySkin rebuilds them.
var (
	TitleStyle                   lipgloss.Style
	SubtitleStyle                lipgloss.Style
	HeaderStyle                  lipgloss.Style
	ErrorMessageStyle            lipgloss.Style
	statusBarStyle               lipgloss.Style
	helpStyle                    lipgloss.Style
	HelpTextSimpleStyle          lipgloss.Style
	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	AttachmentStyle              lipgloss.Style
	TimestampStyle               lipgloss.Style
	SpinnerStyle                 lipgloss.Style
	ViewportBorderStyle          lipgloss.Style
	FocusedBorderStyle           lipgloss.Style
	ScrollIndicatorStyle         lipgloss.Style

	// Overlay styles (image picker, skin picker)
	OverlayBorderStyle       lipgloss.Style
	OverlayTitleStyle        lipgloss.Style
	OverlayMessageStyle      lipgloss.Style
	OverlaySelectedItemStyle lipgloss.Style
	OverlayNormalItemStyle   lipgloss.Style
	OverlayDimmedItemStyle   lipgloss.Style
	OverlayFilterLabelStyle  lipgloss.Style
	OverlayFilterInputStyle  lipgloss.Style

	markdownStyle string
	activePalette palette
)

func init() {
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)

	if err := ApplySkin(config.SkinUtility); err != nil {
		panic(err)
	}
}

// utilityPalette follows the active bubbletint tint
func utilityPalette() palette {
	return palette{
		primary: tint.Purple(),
		accent:  tint.Yellow(),
		fg:      tint.Fg(),
		bg:      tint.Bg(),
		muted:   tint.BrightBlack(),
		border:  tint.White(),
		danger:  tint.Red(),
	}
}

// materialPalette is the warm pumpkin-and-cream component-library look
func materialPalette() palette {
	return palette{
		primary:  lipgloss.Color("#F08A42"),
		accent:   lipgloss.AdaptiveColor{Light: "#B8865B", Dark: "#E5D8CA"},
		fg:       lipgloss.AdaptiveColor{Light: "#2A2622", Dark: "#F2EBE3"},
		bg:       lipgloss.AdaptiveColor{Light: "#F2EBE3", Dark: "#2A2622"},
		muted:    lipgloss.Color("#7C7369"),
		border:   lipgloss.AdaptiveColor{Light: "#DDD3C8", Dark: "#7C7369"},
		danger:   lipgloss.Color("#D64545"),
		markdown: "pink",
	}
}

// CurrentSkin returns the name of the skin last applied
func CurrentSkin() string {
	return currentSkin
}

// ApplySkin rebuilds every shared style from the named skin
func ApplySkin(name string) error {
	var p palette
	switch name {
	case config.SkinUtility:
		p = utilityPalette()
	case config.SkinMaterial:
		p = materialPalette()
	default:
		return fmt.Errorf("unknown skin %q", name)
	}

	currentSkin = name
	activePalette = p
	markdownStyle = p.markdown

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	HeaderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(p.danger)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(1, 0, 0, 1)

	HelpTextSimpleStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(p.accent).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(p.primary).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(p.fg).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(p.fg).
		Padding(0, 1).
		MarginBottom(1)

	AttachmentStyle = lipgloss.NewStyle().
		Foreground(p.accent).
		Italic(true)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(p.primary)

	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	FocusedBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.primary).
		Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().
		Foreground(p.border)

	OverlayBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.accent).
		Padding(1, 2)

	OverlayTitleStyle = lipgloss.NewStyle().
		Foreground(p.accent).
		Bold(true)

	OverlayMessageStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Align(lipgloss.Center)

	OverlaySelectedItemStyle = lipgloss.NewStyle().
		Foreground(p.primary).
		Background(p.muted).
		Bold(true)

	OverlayNormalItemStyle = lipgloss.NewStyle().
		Foreground(p.fg)

	OverlayDimmedItemStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	OverlayFilterLabelStyle = lipgloss.NewStyle().
		Foreground(p.border).
		Bold(true)

	OverlayFilterInputStyle = lipgloss.NewStyle().
		Foreground(p.fg)

	return nil
}

// ConfigureListStyles configures all list styles to match the active skin
func ConfigureListStyles(l *list.Model) {
	l.Styles.Title = TitleStyle
	l.Styles.TitleBar = lipgloss.NewStyle().
		Padding(0, 0, 1, 0)

	l.Styles.PaginationStyle = lipgloss.NewStyle().
		Foreground(activePalette.muted)

	l.Styles.HelpStyle = helpStyle

	l.Styles.FilterPrompt = lipgloss.NewStyle().
		Foreground(activePalette.accent)
	l.Styles.FilterCursor = lipgloss.NewStyle().
		Foreground(activePalette.primary)

	l.Styles.StatusBar = lipgloss.NewStyle().
		Foreground(activePalette.muted).
		Padding(0, 0, 1, 0)

	l.Styles.DividerDot = lipgloss.NewStyle().
		Foreground(activePalette.muted).
		SetString(" • ")
}

// CreateThemedDelegate creates a list delegate in the active skin's colors.
// Active marks the room currently shown in the chat pane.
func CreateThemedDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(activePalette.primary).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(activePalette.primary).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(activePalette.accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(activePalette.primary).
		Padding(0, 0, 0, 1)

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(activePalette.fg).
		Padding(0, 0, 0, 2)

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(activePalette.muted).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedTitle = lipgloss.NewStyle().
		Foreground(activePalette.muted).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedDesc = lipgloss.NewStyle().
		Foreground(activePalette.muted).
		Padding(0, 0, 0, 2)

	return d
}

// RenderError renders an error message
func RenderError(msg string) string {
	return ErrorMessageStyle.Render("  ✗ " + msg)
}

// RenderPane renders content in a bordered pane, highlighted when focused
func RenderPane(content string, focused bool) string {
	if focused {
		return FocusedBorderStyle.Render(content)
	}
	return ViewportBorderStyle.Render(content)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(max(width-10, 10)).
		Align(lipgloss.Right)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(max(width-10, 10))
}

// GetOverlayBorderStyle returns the overlay border style with dynamic width
func GetOverlayBorderStyle(width int) lipgloss.Style {
	return OverlayBorderStyle.Width(width - 4)
}

// GetOverlayItemStyle returns item style with dynamic width
func GetOverlayItemStyle(width int, state string) lipgloss.Style {
	baseWidth := width - 8
	switch state {
	case "selected":
		return OverlaySelectedItemStyle.Width(baseWidth)
	case "dimmed":
		return OverlayDimmedItemStyle.Width(baseWidth)
	default:
		return OverlayNormalItemStyle.Width(baseWidth)
	}
}

// GetOverlayMessageStyle returns message style with dynamic width
func GetOverlayMessageStyle(width int) lipgloss.Style {
	return OverlayMessageStyle.Width(width - 8)
}
