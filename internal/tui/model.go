package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notesmith/notesmith/internal/model"
)

// ProgressMsg reports that one more note has been handled by the runner.
type ProgressMsg struct {
	Done   int
	Total  int
	Report *model.NoteReport
}

// DoneMsg carries the final summary once the whole run has finished.
type DoneMsg struct {
	Report *model.BatchReport
}

type tickMsg struct{}

// maxVisibleNotes bounds the per-note tail so large batches do not
// redraw thousands of lines every frame.
const maxVisibleNotes = 8

// Model contains the Bubbletea state for a generation run.
type Model struct {
	total     int
	completed int
	reports   []*model.NoteReport
	updated   int
	failed    int
	skipped   int
	batch     *model.BatchReport
	finished  bool
	cancelled bool
}

// NewModel constructs a progress model for a run over total notes.
func NewModel(total int) Model {
	return Model{total: total}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalNotes returns the number of notes in the run.
func (m Model) TotalNotes() int {
	return m.total
}

// CompletedNotes returns the number of notes handled so far.
func (m Model) CompletedNotes() int {
	return m.completed
}

// IsFinished reports whether the run has completed or been cancelled.
func (m Model) IsFinished() bool {
	return m.finished
}

// IsCancelled reports whether the user interrupted the run.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

func (m *Model) recordReport(rep *model.NoteReport) {
	switch noteClass(rep) {
	case model.StatusFailed:
		m.failed++
	case model.StatusGenerated:
		m.updated++
	default:
		m.skipped++
	}
	if rep != nil {
		m.reports = append(m.reports, rep)
	}
}

// noteClass reduces a note report to one of the run counters: failed,
// generated, or skipped. Tolerates a nil report.
func noteClass(rep *model.NoteReport) string {
	switch {
	case rep.Failed():
		return model.StatusFailed
	case rep != nil && rep.DidUpdate:
		return model.StatusGenerated
	default:
		return model.StatusSkipped
	}
}
