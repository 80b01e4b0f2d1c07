package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"cozy-chat/internal/media"
)

const maxVisibleImages = 10

// ImageSelectorModel lists attachable images and lets the user filter and
// pick one
type ImageSelectorModel struct {
	images         []media.Image
	filteredImages []media.Image
	filterInput    textinput.Model
	selectedIndex  int
	dir            string
	loadErr        error
	width          int
	height         int
}

// ImageSelected is sent when user picks an image
type ImageSelected struct {
	Path string
}

// ImageSelectorClosed is sent when the selector is closed without a pick
type ImageSelectorClosed struct{}

// ImagesLoaded carries the result of scanning the image directory
type ImagesLoaded struct {
	Dir    string
	Images []media.Image
	Err    error
}

func NewImageSelectorModel() ImageSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 100
	ti.Width = 40

	return ImageSelectorModel{
		filterInput: ti,
	}
}

func (m ImageSelectorModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetImages resets the selector with a fresh directory listing
func (m *ImageSelectorModel) SetImages(loaded ImagesLoaded) {
	m.images = loaded.Images
	m.dir = loaded.Dir
	m.loadErr = loaded.Err
	m.filterInput.SetValue("")
	m.filterInput.Focus()
	m.updateFilteredImages()
	m.selectedIndex = 0
}

func (m *ImageSelectorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.filterInput.Width = m.overlayWidth() - 12
}

func (m ImageSelectorModel) overlayWidth() int {
	// Use 50% of window width
	return max(m.width/2, 40)
}

func (m *ImageSelectorModel) updateFilteredImages() {
	filterText := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))

	if filterText == "" {
		m.filteredImages = m.images
		return
	}

	m.filteredImages = []media.Image{}
	for _, img := range m.images {
		if strings.Contains(strings.ToLower(img.FileName), filterText) {
			m.filteredImages = append(m.filteredImages, img)
		}
	}
}

func (m ImageSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if m.selectedIndex < len(m.filteredImages)-1 {
				m.selectedIndex++
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.filteredImages) > 0 {
				selected := m.filteredImages[m.selectedIndex]
				return m, func() tea.Msg {
					return ImageSelected{Path: selected.Path}
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			// If filter has text, clear it first
			if m.filterInput.Value() != "" {
				m.filterInput.SetValue("")
				m.updateFilteredImages()
				m.selectedIndex = 0
				return m, nil
			}
			return m, func() tea.Msg {
				return ImageSelectorClosed{}
			}

		case msg.Type == tea.KeyBackspace || msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			m.filterInput, cmd = m.filterInput.Update(msg)
			oldLen := len(m.filteredImages)
			m.updateFilteredImages()
			// Reset selection if filtered list changed
			if oldLen != len(m.filteredImages) || m.selectedIndex >= len(m.filteredImages) {
				m.selectedIndex = 0
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	// Update textinput for cursor blinking
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m ImageSelectorModel) View() string {
	overlayWidth := m.overlayWidth()
	var content strings.Builder

	if m.loadErr != nil || len(m.images) == 0 {
		content.WriteString(OverlayTitleStyle.Render("Attach Image"))
		content.WriteString("\n\n")
		message := fmt.Sprintf("No images found in %s", m.dir)
		if m.loadErr != nil {
			message = fmt.Sprintf("Cannot read %s: %v", m.dir, m.loadErr)
		}
		content.WriteString(GetOverlayMessageStyle(overlayWidth).Render(message))
		content.WriteString("\n\n")
		content.WriteString(HelpTextSimpleStyle.Render("Press Esc to close"))
		return GetOverlayBorderStyle(overlayWidth).Render(content.String())
	}

	title := fmt.Sprintf("Attach Image (%d)", len(m.images))
	if len(m.filteredImages) != len(m.images) {
		title = fmt.Sprintf("Attach Image (%d of %d)", len(m.filteredImages), len(m.images))
	}
	content.WriteString(OverlayTitleStyle.Render(title))
	content.WriteString("\n\n")

	content.WriteString(OverlayFilterLabelStyle.Render("Filter: "))
	content.WriteString(OverlayFilterInputStyle.Render(m.filterInput.View()))
	content.WriteString("\n\n")

	if len(m.filteredImages) == 0 {
		content.WriteString(GetOverlayMessageStyle(overlayWidth).Render("No images match your filter"))
		content.WriteString("\n\n")
		content.WriteString(HelpTextSimpleStyle.Render("Type to filter • Esc: Clear filter"))
		return GetOverlayBorderStyle(overlayWidth).Render(content.String())
	}

	visibleStart, visibleEnd := visibleRange(m.selectedIndex, len(m.filteredImages), maxVisibleImages)

	for i := visibleStart; i < visibleEnd; i++ {
		img := m.filteredImages[i]
		line := fmt.Sprintf("%s  %s", truncateFileName(img.FileName, overlayWidth-24), humanize.Bytes(uint64(img.Size)))

		if i == m.selectedIndex {
			content.WriteString(GetOverlayItemStyle(overlayWidth, "selected").Render("▶ " + line))
		} else {
			content.WriteString(GetOverlayItemStyle(overlayWidth, "normal").Render("  " + line))
		}
		content.WriteString("\n")
	}

	if len(m.filteredImages) > maxVisibleImages {
		content.WriteString("\n")
		content.WriteString(GetOverlayItemStyle(overlayWidth, "dimmed").Render(
			fmt.Sprintf("Showing %d-%d of %d images", visibleStart+1, visibleEnd, len(m.filteredImages)),
		))
	}

	content.WriteString("\n")

	helpText := "Type to filter • ↑/↓: Navigate • Enter: Attach • Esc: "
	if m.filterInput.Value() != "" {
		helpText += "Clear filter"
	} else {
		helpText += "Cancel"
	}
	content.WriteString(HelpTextSimpleStyle.Render(helpText))

	return GetOverlayBorderStyle(overlayWidth).Render(content.String())
}

// visibleRange keeps the selected row near the middle of a scrolling window
func visibleRange(selected, total, window int) (int, int) {
	if total <= window {
		return 0, total
	}
	start := max(selected-window/2, 0)
	end := start + window
	if end > total {
		end = total
		start = end - window
	}
	return start, end
}

func truncateFileName(fileName string, maxLength int) string {
	if maxLength < 8 || len(fileName) <= maxLength {
		return fileName
	}
	ext := filepath.Ext(fileName)
	nameWithoutExt := strings.TrimSuffix(fileName, ext)
	keep := maxLength - len(ext) - 3
	if keep <= 0 {
		return fileName[:maxLength]
	}
	return nameWithoutExt[:keep] + "..." + ext
}
