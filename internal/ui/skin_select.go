package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"cozy-chat/internal/config"
)

var skinDescriptions = map[string]string{
	config.SkinUtility:  "Terminal palette, compact utility styling",
	config.SkinMaterial: "Warm pumpkin and cream, component-library look",
}

type SkinSelectModel struct {
	skins         []string
	selectedIndex int
	width         int
}

type SkinSelected struct {
	Skin string
}

type SkinSelectClosed struct{}

func NewSkinSelectModel(current string) SkinSelectModel {
	m := SkinSelectModel{skins: config.Skins}
	for i, s := range m.skins {
		if s == current {
			m.selectedIndex = i
		}
	}
	return m
}

func (m SkinSelectModel) Init() tea.Cmd {
	return nil
}

func (m SkinSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
		case "down":
			if m.selectedIndex < len(m.skins)-1 {
				m.selectedIndex++
			}
		case "enter":
			skin := m.skins[m.selectedIndex]
			return m, func() tea.Msg {
				return SkinSelected{Skin: skin}
			}
		case "esc":
			return m, func() tea.Msg {
				return SkinSelectClosed{}
			}
		}
	}
	return m, nil
}

func (m SkinSelectModel) View() string {
	overlayWidth := max(m.width/2, 40)

	var b strings.Builder
	b.WriteString(OverlayTitleStyle.Render("Choose Skin"))
	b.WriteString("\n\n")

	for i, skin := range m.skins {
		line := skin + " - " + skinDescriptions[skin]
		if skin == CurrentSkin() {
			line += " (current)"
		}
		if i == m.selectedIndex {
			b.WriteString(GetOverlayItemStyle(overlayWidth, "selected").Render("▶ " + line))
		} else {
			b.WriteString(GetOverlayItemStyle(overlayWidth, "normal").Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpTextSimpleStyle.Render("↑/↓: Navigate • Enter: Apply • Esc: Cancel"))

	return GetOverlayBorderStyle(overlayWidth).Render(b.String())
}
