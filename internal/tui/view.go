package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/notesmith/notesmith/internal/model"
)

// View renders the current state of the run.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("Notesmith • Generating notes"))
	sections = append(sections, sectionStyle.Render("Progress"), renderBar(m.completed, m.total))

	if len(m.reports) > 0 {
		sections = append(sections, sectionStyle.Render("Notes"))
		sections = append(sections, renderNoteTail(m.reports))
	}

	if summary := m.renderSummary(); summary != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderBar(completed, total int) string {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	ratio := 0.0
	if total > 0 {
		ratio = math.Min(1.0, float64(completed)/float64(total))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, total))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", bar.ViewAs(ratio))
}

func renderNoteTail(reports []*model.NoteReport) string {
	start := 0
	if len(reports) > maxVisibleNotes {
		start = len(reports) - maxVisibleNotes
	}

	var lines []string
	if start > 0 {
		lines = append(lines, skippedStyle.Render(fmt.Sprintf(" … %d earlier notes", start)))
	}
	for _, rep := range reports[start:] {
		lines = append(lines, noteLine(rep))
	}
	return strings.Join(lines, "\n")
}

func noteLine(rep *model.NoteReport) string {
	line := fmt.Sprintf(" %s note %d", noteIcon(rep), rep.NoteID)
	if detail := noteDetail(rep); detail != "" {
		line = fmt.Sprintf("%s — %s", line, detail)
	}
	if d := noteDuration(rep); d > 0 {
		line = fmt.Sprintf("%s (%s)", line, d.Truncate(10*time.Millisecond))
	}
	return line
}

func (m Model) renderSummary() string {
	updated, failed, skipped := m.updated, m.failed, m.skipped
	if m.batch != nil {
		updated, failed, skipped = m.batch.Updated, m.batch.Failed, m.batch.Skipped
	}

	var lines []string
	if m.total > 0 || m.completed > 0 {
		lines = append(lines, fmt.Sprintf("Updated: %d  Failed: %d  Skipped: %d", updated, failed, skipped))
	}

	switch {
	case m.cancelled:
		lines = append(lines, "Run cancelled")
	case m.finished && failed > 0:
		lines = append(lines, "Run finished with failures")
	case m.finished:
		lines = append(lines, "Run finished successfully")
	}

	return strings.Join(lines, "\n")
}

// noteIcon returns the glyph for a finished note.
func noteIcon(rep *model.NoteReport) string {
	switch noteClass(rep) {
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusGenerated:
		return successStyle.Render("✓")
	default:
		return skippedStyle.Render("⊘")
	}
}

func noteDetail(rep *model.NoteReport) string {
	if rep == nil {
		return ""
	}
	if rep.Failed() {
		if rep.Err != nil {
			return rep.Err.Error()
		}
		for _, res := range rep.Results {
			if res.Status != model.StatusFailed {
				continue
			}
			if res.Error != nil {
				return res.Error.Error()
			}
			return res.Field + " failed"
		}
		return ""
	}

	generated := 0
	for _, res := range rep.Results {
		if res.Status == model.StatusGenerated {
			generated++
		}
	}
	if generated > 0 {
		return fmt.Sprintf("%d generated", generated)
	}
	return ""
}

func noteDuration(rep *model.NoteReport) time.Duration {
	if rep == nil {
		return 0
	}
	var total time.Duration
	for _, res := range rep.Results {
		total += res.Duration
	}
	return total
}

// RenderNoteLine formats one finished note for plain, non-interactive
// output.
func RenderNoteLine(done, total int, id int64, rep *model.NoteReport) string {
	line := fmt.Sprintf("[%d/%d] %s note %d", done, total, noteIcon(rep), id)
	if detail := noteDetail(rep); detail != "" {
		line = fmt.Sprintf("%s — %s", line, detail)
	}
	return line
}

// RenderSummary formats the final run summary for plain output.
func RenderSummary(rep *model.BatchReport) string {
	if rep == nil {
		return ""
	}
	return fmt.Sprintf("Updated: %d  Failed: %d  Skipped: %d  Time: %s",
		rep.Updated, rep.Failed, rep.Skipped, rep.Duration.Truncate(10*time.Millisecond))
}
