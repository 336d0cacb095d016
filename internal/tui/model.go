// Package tui renders the docchat client: a file picker, an upload progress
// stage and the chat screen with transcript, citation chips and a page
// viewer pane. All state lives in the store; the model only holds widgets.
package tui

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/docchat/internal/citations"
	"github.com/csheth/docchat/internal/flow"
	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/history"
	"github.com/csheth/docchat/internal/state"
)

// Config wires the application's components into the TUI.
type Config struct {
	Store     *state.Store
	Upload    *flow.Upload
	Chat      *flow.Chat
	Gateway   *gateway.Client
	History   *history.Store
	Navigator *citations.Navigator
	Logger    *zap.Logger

	RestoreHistory bool
	HealthCheck    bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/document.pdf"
	pathInput.CharLimit = 512
	pathInput.Width = 60
	pathInput.Focus()

	composer := textinput.New()
	composer.Placeholder = "Ask a question about the document…"
	composer.CharLimit = composerCharLimit
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	transcript := viewport.New(80, 16)

	m := &model{
		config:      config,
		stage:       stagePick,
		focus:       focusComposer,
		pathInput:   pathInput,
		composer:    composer,
		spinner:     spin,
		progressBar: progress.New(progress.WithDefaultGradient()),
		transcript:  transcript,
		navCh:       make(chan int, 8),
		infoMessage: "Pick a PDF to start a conversation.",
	}
	if config.Navigator != nil {
		config.Navigator.Subscribe(func(page int) {
			select {
			case m.navCh <- page:
			default:
			}
		})
	}
	return m
}

type model struct {
	config Config
	stage  stage
	focus  chatFocus

	pathInput   textinput.Model
	composer    textinput.Model
	spinner     spinner.Model
	progressBar progress.Model
	transcript  viewport.Model

	progressValue float64
	chips         []state.Citation
	pageText      string
	infoMessage   string
	width         int
	height        int

	navCh chan int
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForNavigation()}
	if m.config.HealthCheck {
		cmds = append(cmds, m.healthCheckCmd())
	}
	if m.config.RestoreHistory {
		cmds = append(cmds, m.restoreSessionCmd())
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := msg.Width - viewportHorizontalPadding
		if width < minViewportWidth {
			width = minViewportWidth
		}
		m.transcript.Width = width
		height := msg.Height - viewerPaneHeight - 8
		if height < 5 {
			height = 5
		}
		m.transcript.Height = height
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.closeDocument()
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case progressTickMsg:
		if m.stage != stageUploading {
			return m, nil
		}
		if m.progressValue < progressCeiling {
			m.progressValue += progressStep
			if m.progressValue > progressCeiling {
				m.progressValue = progressCeiling
			}
		}
		return m, progressTick()

	case uploadResultMsg:
		if msg.err != nil {
			m.stage = stagePick
			m.progressValue = 0
			m.infoMessage = "Upload failed. Fix the problem and try again."
			return m, nil
		}
		m.progressValue = 1
		m.config.Store.Dispatch(state.AddChatMessage{
			Message: state.NewMessage(state.KindSystem, "Document uploaded. Ask anything about it; answers cite pages you can jump to."),
		})
		return m, tea.Batch(
			m.openDocumentCmd(msg.path),
			m.saveSessionCmd(msg.result.SessionID),
			settleTick(),
		)

	case uploadSettledMsg:
		m.config.Upload.Settle()
		m.stage = stageChat
		m.focus = focusComposer
		m.composer.Focus()
		m.infoMessage = "Document ready."
		m.refreshTranscript()
		return m, nil

	case docOpenedMsg:
		if msg.err != nil {
			m.config.Logger.Warn("viewer disabled", zap.Error(msg.err))
			m.pageText = ""
			m.infoMessage = "Page viewer unavailable for this file; chat still works."
			return m, nil
		}
		m.closeDocument()
		m.config.Store.Dispatch(state.SetPDFDocument{Document: msg.doc})
		m.config.Store.Dispatch(state.SetTotalPages{Total: msg.pages})
		m.config.Store.Dispatch(state.SetCurrentPage{Page: 1})
		return m, pageTextCmd(msg.doc, 1)

	case chatResultMsg:
		if msg.err == nil && msg.message.Kind == state.KindAssistant {
			m.chips = citations.DedupeForRender(msg.message.Citations)
		}
		m.refreshTranscript()
		return m, m.persistChatCmd()

	case pageTextMsg:
		if msg.err != nil {
			m.pageText = ""
			return m, nil
		}
		m.pageText = msg.text
		return m, nil

	case navigateMsg:
		var cmd tea.Cmd
		if doc := m.config.Store.Snapshot().PDFDocument; doc != nil {
			cmd = pageTextCmd(doc, msg.page)
		}
		return m, tea.Batch(cmd, m.waitForNavigation())

	case sessionRestoredMsg:
		if msg.err != nil || msg.sessionID == "" {
			if msg.err != nil {
				m.config.Logger.Info("session restore skipped", zap.Error(msg.err))
			}
			return m, nil
		}
		m.config.Store.Dispatch(state.SetSessionID{SessionID: msg.sessionID})
		for _, message := range msg.messages {
			m.config.Store.Dispatch(state.AddChatMessage{Message: message})
		}
		m.stage = stageChat
		m.focus = focusComposer
		m.composer.Focus()
		m.infoMessage = "Previous session restored."
		m.refreshTranscript()
		if msg.filePath != "" {
			// Recommit the file handle so the document survives the next
			// cache overwrite even if the file moved since last run.
			handle, err := flow.Inspect(msg.filePath)
			if err != nil {
				handle = state.FileHandle{Name: filepath.Base(msg.filePath), Path: msg.filePath}
			}
			m.config.Store.Dispatch(state.SetPDFFile{File: &handle})
			return m, m.openDocumentCmd(msg.filePath)
		}
		return m, nil

	case healthCheckMsg:
		if msg.err != nil {
			m.infoMessage = "Backend unreachable: " + msg.err.Error()
		}
		return m, nil

	case chatPersistedMsg:
		if msg.err != nil {
			m.config.Logger.Warn("chat backup failed", zap.Error(msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stagePick:
		return m.handlePickKey(key)
	case stageUploading:
		return m, nil
	case stageChat:
		return m.handleChatKey(key)
	default:
		return m, nil
	}
}

func (m *model) handlePickKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyEnter {
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			m.infoMessage = "Enter the path of a PDF file."
			return m, nil
		}
		m.stage = stageUploading
		m.progressValue = 0
		return m, tea.Batch(m.spinner.Tick, progressTick(), m.uploadCmd(path))
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(key)
	return m, cmd
}

func (m *model) handleChatKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlL:
		m.clearChat()
		return m, m.persistChatCmd()
	case tea.KeyCtrlR:
		m.startOver()
		return m, nil
	}

	if m.focus == focusComposer {
		switch key.Type {
		case tea.KeyEsc:
			m.composer.Blur()
			m.focus = focusBrowse
			m.infoMessage = "Browse mode. Press i to type again."
			return m, nil
		case tea.KeyEnter:
			return m, m.submitMessage()
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(key)
		return m, cmd
	}
	return m.handleBrowseKey(key)
}

func (m *model) handleBrowseKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "i", "esc":
		m.focus = focusComposer
		m.composer.Focus()
		m.infoMessage = ""
		return m, textinput.Blink
	case "up", "k":
		m.transcript.LineUp(1)
	case "down", "j":
		m.transcript.LineDown(1)
	case "g":
		m.transcript.GotoTop()
	case "G":
		m.transcript.GotoBottom()
	case "[":
		return m, m.turnPage(-1)
	case "]":
		return m, m.turnPage(1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		index, _ := strconv.Atoi(key.String())
		return m, m.clickChip(index - 1)
	default:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(key)
		return m, cmd
	}
	return m, nil
}

// submitMessage runs phase one of the send protocol synchronously and kicks
// off phase two as a command.
func (m *model) submitMessage() tea.Cmd {
	text := m.composer.Value()
	if _, err := m.config.Chat.Begin(text); err != nil {
		m.infoMessage = err.Error()
		return nil
	}
	m.composer.SetValue("")
	m.infoMessage = ""
	m.refreshTranscript()
	return tea.Batch(m.spinner.Tick, m.chatCmd(text))
}

// clickChip implements the navigation protocol: commit the page to the
// store, then announce it; the viewer reacts through its subscription.
func (m *model) clickChip(index int) tea.Cmd {
	if index < 0 || index >= len(m.chips) {
		m.infoMessage = "No such citation."
		return nil
	}
	chip := m.chips[index]
	if !citations.Navigable(chip) {
		m.infoMessage = "That citation has no page to jump to."
		return nil
	}
	m.config.Store.Dispatch(state.SetCurrentPage{Page: chip.Page})
	m.config.Navigator.Announce(chip.Page)
	m.infoMessage = "Jumped to page " + strconv.Itoa(chip.Page) + "."
	return nil
}

func (m *model) turnPage(delta int) tea.Cmd {
	snap := m.config.Store.Snapshot()
	if snap.PDFDocument == nil || snap.TotalPages == 0 {
		m.infoMessage = "No pages to browse."
		return nil
	}
	page := snap.CurrentPage + delta
	if page < 1 || page > snap.TotalPages {
		return nil
	}
	m.config.Store.Dispatch(state.SetCurrentPage{Page: page})
	return pageTextCmd(snap.PDFDocument, page)
}

func (m *model) clearChat() {
	m.config.Store.Dispatch(state.ClearChat{})
	m.chips = nil
	m.infoMessage = "Chat cleared. The document and session are untouched."
	m.refreshTranscript()
}

// startOver releases the document handle, resets the whole state tree and
// drops the advisory cache.
func (m *model) startOver() {
	m.closeDocument()
	m.config.Store.Dispatch(state.ResetState{})
	if m.config.History != nil {
		if err := m.config.History.Clear(); err != nil {
			m.config.Logger.Warn("cache clear failed", zap.Error(err))
		}
	}
	m.stage = stagePick
	m.focus = focusComposer
	m.chips = nil
	m.pageText = ""
	m.progressValue = 0
	m.composer.SetValue("")
	m.composer.Blur()
	m.pathInput.SetValue("")
	m.pathInput.Focus()
	m.infoMessage = "Pick a PDF to start a conversation."
}

func (m *model) closeDocument() {
	if doc := m.config.Store.Snapshot().PDFDocument; doc != nil {
		if err := doc.Close(); err != nil {
			m.config.Logger.Warn("document close failed", zap.Error(err))
		}
		m.config.Store.Dispatch(state.SetPDFDocument{Document: nil})
	}
}

func (m *model) busy() bool {
	return m.stage == stageUploading || m.config.Store.Snapshot().Loading
}
