package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/localforge/ragcore/internal/core/ports/driving"
)

var (
	ingestTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	ingestMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	ingestErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	ingestDoneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1"))
)

// ingestEventMsg carries one IngestEvent into the Bubble Tea update loop.
type ingestEventMsg driving.IngestEvent

// ingestChannelClosedMsg signals the progress channel was closed: the
// ingest goroutine is done sending events.
type ingestChannelClosedMsg struct{}

// ingestModel renders per-file ingest progress without blocking the
// ingest goroutine; the two communicate over a channel, read here by a
// tea.Cmd rather than directly by Update.
type ingestModel struct {
	events  <-chan driving.IngestEvent
	spinner spinner.Model

	sessionID   string
	filesSeen   int
	chunksAdded int
	totalChunks int
	errorCount  int
	lastPath    string
	lastErr     error
	done        bool
	quitting    bool
}

func newIngestModel(events <-chan driving.IngestEvent) ingestModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ingestTitleStyle
	return ingestModel{events: events, spinner: s}
}

func waitForIngestEvent(events <-chan driving.IngestEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return ingestChannelClosedMsg{}
		}
		return ingestEventMsg(ev)
	}
}

func (m ingestModel) Init() tea.Cmd {
	return tea.Batch(waitForIngestEvent(m.events), m.spinner.Tick)
}

func (m ingestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ingestEventMsg:
		ev := driving.IngestEvent(msg)
		if m.sessionID == "" {
			m.sessionID = ev.SessionID
		}
		if ev.Done {
			m.done = true
			m.totalChunks = ev.TotalChunks
			return m, tea.Quit
		}

		m.filesSeen++
		m.lastPath = ev.Path
		if ev.Err != nil {
			m.errorCount++
			m.lastErr = ev.Err
		} else {
			m.chunksAdded += ev.ChunksAdded
		}
		return m, waitForIngestEvent(m.events)

	case ingestChannelClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m ingestModel) View() string {
	if m.quitting {
		return ingestMutedStyle.Render("Interrupted.") + "\n"
	}
	if m.done {
		return ingestDoneStyle.Render(fmt.Sprintf(
			"Done. %d files, %d chunks added, %d errors.", m.filesSeen, m.chunksAdded, m.errorCount)) + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Ingesting... %d files (%d chunks, %d errors)\n",
		m.spinner.View(),
		m.filesSeen, m.chunksAdded, m.errorCount)
	if m.sessionID != "" {
		b.WriteString(ingestMutedStyle.Render("  session: "+shortSessionID(m.sessionID)) + "\n")
	}
	if m.lastPath != "" {
		b.WriteString(ingestMutedStyle.Render("  last: " + filepath.Base(m.lastPath)))
		if m.lastErr != nil {
			b.WriteString(" " + ingestErrorStyle.Render(fmt.Sprintf("(%v)", m.lastErr)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shortSessionID trims a uuid down to its first segment for display; the
// full id still goes to the verbose log.
func shortSessionID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
