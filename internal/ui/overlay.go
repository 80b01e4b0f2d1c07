package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// OverlayModel draws a pop-up model over whatever view is behind it
type OverlayModel struct {
	foreground tea.Model
	visible    bool
}

func NewOverlayModel(foreground tea.Model) OverlayModel {
	return OverlayModel{foreground: foreground}
}

func (m *OverlayModel) Show() {
	m.visible = true
}

func (m *OverlayModel) Hide() {
	m.visible = false
}

func (m OverlayModel) IsVisible() bool {
	return m.visible
}

// Foreground returns the wrapped pop-up model
func (m OverlayModel) Foreground() tea.Model {
	return m.foreground
}

// SetForeground replaces the wrapped pop-up model
func (m *OverlayModel) SetForeground(fg tea.Model) {
	m.foreground = fg
}

// Update forwards msg to the pop-up while it is visible
func (m *OverlayModel) Update(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	var cmd tea.Cmd
	m.foreground, cmd = m.foreground.Update(msg)
	return cmd
}

func (m OverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	// Position at top center with slight vertical offset
	overlayModel := overlay.New(
		m.foreground,
		&staticViewModel{content: backgroundView},
		overlay.Center, // horizontal position
		overlay.Top,    // vertical position
		0,              // x offset
		1,              // y offset (minimal top margin)
	)

	return overlayModel.View()
}

// staticViewModel is a simple model that renders static content (background)
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
