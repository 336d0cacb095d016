package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/docchat/internal/citations"
	"github.com/csheth/docchat/internal/state"
)

func (m *model) View() string {
	switch m.stage {
	case stagePick:
		return m.viewPick()
	case stageUploading:
		return m.viewUploading()
	case stageChat:
		return m.viewChat()
	default:
		return ""
	}
}

func (m *model) viewPick() string {
	snap := m.config.Store.Snapshot()
	b := strings.Builder{}
	b.WriteString(titleStyle.Render("docchat"))
	b.WriteRune('\n')
	b.WriteString(taglineStyle.Render(heroTagline))
	b.WriteString("\n\n")
	b.WriteString(sectionHeaderStyle.Render("Path to a PDF (max 10 MB)"))
	b.WriteRune('\n')
	b.WriteString(m.pathInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Press Enter to upload. Ctrl+C quits."))
	if m.infoMessage != "" {
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render(m.infoMessage))
	}
	if snap.Err != "" {
		b.WriteRune('\n')
		b.WriteString(errorStyle.Render(snap.Err))
	}
	return b.String()
}

func (m *model) viewUploading() string {
	b := strings.Builder{}
	b.WriteString(titleStyle.Render("docchat"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s Uploading…\n\n", m.spinner.View()))
	b.WriteString(m.progressBar.ViewAs(m.progressValue))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render(fmt.Sprintf("%3.0f%%", m.progressValue*100)))
	return b.String()
}

func (m *model) viewChat() string {
	snap := m.config.Store.Snapshot()
	parts := []string{m.statusBar(snap), m.transcript.View()}

	if chips := m.chipRow(); chips != "" {
		parts = append(parts, chips)
	}
	if pane := m.viewerPane(snap); pane != "" {
		parts = append(parts, pane)
	}
	if snap.Loading {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s Assistant is typing…", m.spinner.View())))
	}
	if snap.Err != "" {
		parts = append(parts, errorStyle.Render(snap.Err))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	parts = append(parts, m.composer.View(), m.keyLegend())
	return joinNonEmpty(parts)
}

func (m *model) statusBar(snap state.App) string {
	items := []string{"docchat"}
	if snap.PDFFile != nil {
		items = append(items, snap.PDFFile.Name)
	}
	if snap.TotalPages > 0 {
		items = append(items, fmt.Sprintf("page %d/%d", snap.CurrentPage, snap.TotalPages))
	}
	if snap.SessionID != "" {
		items = append(items, "session "+shortID(snap.SessionID))
	}
	return statusBarStyle.Render(strings.Join(items, "  •  "))
}

// chipRow renders the deduplicated citation chips of the latest assistant
// reply, numbered for keyboard clicks in browse mode.
func (m *model) chipRow() string {
	if len(m.chips) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(m.chips))
	for i, chip := range m.chips {
		label := fmt.Sprintf("[%d] %s", i+1, citations.Label(chip, i+1))
		if citations.Navigable(chip) {
			rendered = append(rendered, chipStyle.Render(label))
		} else {
			rendered = append(rendered, inertChipStyle.Render(label))
		}
	}
	return "Citations: " + strings.Join(rendered, " ")
}

func (m *model) viewerPane(snap state.App) string {
	if snap.PDFDocument == nil || snap.TotalPages == 0 {
		return ""
	}
	header := sectionHeaderStyle.Render(fmt.Sprintf("Page %d of %d", snap.CurrentPage, snap.TotalPages))
	text := m.pageText
	if text == "" {
		text = helperStyle.Render("(no extractable text on this page)")
	} else {
		text = clampLines(wordwrap.String(text, m.wrapWidth(2)), viewerPaneHeight-2)
	}
	return viewerBoxStyle.Render(header + "\n" + text)
}

func (m *model) keyLegend() string {
	if m.focus == focusComposer {
		return helperStyle.Render("Enter send  •  Esc browse  •  Ctrl+L clear chat  •  Ctrl+R new document  •  Ctrl+C quit")
	}
	return helperStyle.Render("j/k scroll  •  [/] page  •  1-9 citation  •  i type  •  Ctrl+C quit")
}

// refreshTranscript rebuilds the viewport from the store snapshot and pins
// the view to the latest entry.
func (m *model) refreshTranscript() {
	snap := m.config.Store.Snapshot()
	if len(snap.Messages) == 0 {
		m.transcript.SetContent(helperStyle.Render("No messages yet."))
		return
	}
	width := m.wrapWidth(0)
	blocks := make([]string, 0, len(snap.Messages))
	for _, msg := range snap.Messages {
		blocks = append(blocks, renderMessage(msg, width))
	}
	m.transcript.SetContent(strings.Join(blocks, "\n\n"))
	m.transcript.GotoBottom()
}

func renderMessage(msg state.ChatMessage, width int) string {
	body := wordwrap.String(msg.Content, width)
	switch msg.Kind {
	case state.KindUser:
		return userLabelStyle.Render("You") + "\n" + body
	case state.KindAssistant:
		block := assistantLabelStyle.Render("Assistant") + "\n" + body
		if refs := renderMessageCitations(msg.Citations); refs != "" {
			block += "\n" + helperStyle.Render(refs)
		}
		if msg.Usage != nil && msg.Usage.Total > 0 {
			block += "\n" + helperStyle.Render(fmt.Sprintf("%d tokens", msg.Usage.Total))
		}
		return block
	case state.KindSystem:
		return systemStyle.Render(body)
	case state.KindError:
		return errorStyle.Render("Error: " + body)
	default:
		return body
	}
}

func renderMessageCitations(list []state.Citation) string {
	chips := citations.DedupeForRender(list)
	if len(chips) == 0 {
		return ""
	}
	labels := make([]string, 0, len(chips))
	for i, chip := range chips {
		labels = append(labels, citations.Label(chip, i+1))
	}
	return "cites " + strings.Join(labels, ", ")
}

func (m *model) wrapWidth(padding int) int {
	width := m.transcript.Width
	if width <= 0 {
		width = 80
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func clampLines(text string, max int) string {
	if max < 1 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n") + " …"
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	taglineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	systemStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Italic(true)
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	statusBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	chipStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	inertChipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	viewerBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
)
