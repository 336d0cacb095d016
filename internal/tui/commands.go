package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/docchat/internal/document"
	"github.com/csheth/docchat/internal/history"
	"github.com/csheth/docchat/internal/state"
)

const (
	uploadTimeout = 90 * time.Second
	chatTimeout   = 60 * time.Second
	probeTimeout  = 10 * time.Second
)

func (m *model) uploadCmd(path string) tea.Cmd {
	upload := m.config.Upload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		result, err := upload.HandleFile(ctx, path)
		return uploadResultMsg{path: path, result: result, err: err}
	}
}

func (m *model) chatCmd(text string) tea.Cmd {
	chat := m.config.Chat
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		message, err := chat.Complete(ctx, text)
		return chatResultMsg{message: message, err: err}
	}
}

func (m *model) openDocumentCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := document.Open(path)
		if err != nil {
			return docOpenedMsg{err: err}
		}
		return docOpenedMsg{doc: doc, pages: doc.PageCount()}
	}
}

func pageTextCmd(doc state.Document, page int) tea.Cmd {
	return func() tea.Msg {
		text, err := doc.PageText(page)
		return pageTextMsg{page: page, text: text, err: err}
	}
}

// waitForNavigation turns navigator announcements into messages; it re-arms
// itself after every delivery.
func (m *model) waitForNavigation() tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{page: <-m.navCh}
	}
}

func (m *model) saveSessionCmd(sessionID string) tea.Cmd {
	store := m.config.History
	logger := m.config.Logger
	return func() tea.Msg {
		if store == nil {
			return nil
		}
		if err := store.SaveSession(sessionID); err != nil {
			logger.Warn("session backup failed", zap.Error(err))
		}
		return nil
	}
}

// persistChatCmd overwrites the advisory transcript blob with the current
// snapshot. Best effort: failures are logged, never surfaced.
func (m *model) persistChatCmd() tea.Cmd {
	if m.config.History == nil {
		return nil
	}
	snap := m.config.Store.Snapshot()
	record := history.Snapshot{
		SessionID: snap.SessionID,
		Messages:  snap.Messages,
		Timestamp: time.Now().UTC(),
	}
	if snap.PDFFile != nil {
		record.FilePath = snap.PDFFile.Path
	}
	store := m.config.History
	return func() tea.Msg {
		return chatPersistedMsg{err: store.SaveChat(record)}
	}
}

// restoreSessionCmd revalidates the cached session against the backend; the
// backend is authoritative, an invalid session silently drops the cache.
func (m *model) restoreSessionCmd() tea.Cmd {
	cache := m.config.History
	gw := m.config.Gateway
	return func() tea.Msg {
		if cache == nil || gw == nil {
			return sessionRestoredMsg{}
		}
		sessionID, err := cache.LoadSession()
		if err != nil || sessionID == "" {
			return sessionRestoredMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		valid, err := gw.SessionValid(ctx, sessionID)
		if err != nil {
			return sessionRestoredMsg{err: err}
		}
		if !valid {
			cache.Clear()
			return sessionRestoredMsg{}
		}
		messages, err := gw.ChatHistory(ctx, sessionID)
		if err != nil {
			return sessionRestoredMsg{err: err}
		}
		blob, _ := cache.LoadChat()
		return sessionRestoredMsg{sessionID: sessionID, messages: messages, filePath: blob.FilePath}
	}
}

func (m *model) healthCheckCmd() tea.Cmd {
	gw := m.config.Gateway
	return func() tea.Msg {
		if gw == nil {
			return healthCheckMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return healthCheckMsg{err: gw.Health(ctx)}
	}
}

func progressTick() tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func settleTick() tea.Cmd {
	return tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return uploadSettledMsg{}
	})
}
