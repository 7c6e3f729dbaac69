package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notesmith/notesmith/internal/model"
)

func TestViewRendersBasicLayout(t *testing.T) {
	m := NewModel(3)
	updated, _ := m.Update(ProgressMsg{Done: 1, Total: 3, Report: updatedReport(17)})
	m = updated.(Model)
	updated, _ = m.Update(ProgressMsg{Done: 2, Total: 3, Report: failedReport(21)})
	m = updated.(Model)

	view := m.View()
	require.Contains(t, view, "Notesmith")
	require.Contains(t, view, "2/3")
	require.Contains(t, view, "note 17")
	require.Contains(t, view, "1 generated")
	require.Contains(t, view, "note 21")
	require.Contains(t, view, "boom")
}

func TestViewShowsSummaryWhenFinished(t *testing.T) {
	m := NewModel(2)
	updated, _ := m.Update(ProgressMsg{Done: 1, Total: 2, Report: updatedReport(1)})
	m = updated.(Model)
	updated, _ = m.Update(ProgressMsg{Done: 2, Total: 2, Report: failedReport(2)})
	m = updated.(Model)
	updated, _ = m.Update(DoneMsg{Report: &model.BatchReport{Updated: 1, Failed: 1}})
	m = updated.(Model)

	view := m.View()
	require.Contains(t, view, "Updated: 1  Failed: 1  Skipped: 0")
	require.Contains(t, view, "Run finished with failures")
}

func TestViewShowsCancellation(t *testing.T) {
	m := NewModel(2)
	m.cancelled = true
	m.finished = true

	require.Contains(t, m.View(), "Run cancelled")
}

func TestViewCapsNoteTail(t *testing.T) {
	m := NewModel(12)
	for i := 0; i < 12; i++ {
		updated, _ := m.Update(ProgressMsg{Done: i + 1, Total: 12, Report: updatedReport(int64(i + 1))})
		m = updated.(Model)
	}

	view := m.View()
	require.Contains(t, view, "… 4 earlier notes")
	require.NotContains(t, view, "note 4 ")
	require.Contains(t, view, "note 12")
}

func TestNoteIcon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		report   *model.NoteReport
		expected string
	}{
		{"updated shows checkmark", updatedReport(1), "✓"},
		{"failed shows cross", failedReport(1), "✗"},
		{"skipped shows circle-slash", &model.NoteReport{NoteID: 1}, "⊘"},
		{"nil shows circle-slash", nil, "⊘"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Contains(t, noteIcon(tt.report), tt.expected)
		})
	}
}

func TestRenderNoteLine(t *testing.T) {
	t.Parallel()

	line := RenderNoteLine(3, 10, 7, updatedReport(7))
	require.Contains(t, line, "[3/10]")
	require.Contains(t, line, "note 7")
	require.Contains(t, line, "1 generated")

	skipped := RenderNoteLine(4, 10, 8, nil)
	require.Contains(t, skipped, "note 8")
	require.Contains(t, skipped, "⊘")
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	rep := &model.BatchReport{Updated: 3, Failed: 1, Skipped: 2}
	out := RenderSummary(rep)
	require.Contains(t, out, "Updated: 3")
	require.Contains(t, out, "Failed: 1")
	require.Contains(t, out, "Skipped: 2")

	require.Empty(t, RenderSummary(nil))
}

func TestNoteDetailFallsBackToFieldName(t *testing.T) {
	t.Parallel()

	rep := &model.NoteReport{
		NoteID:  1,
		Results: []model.FieldResult{{Field: "audio", Status: model.StatusFailed}},
	}
	require.Equal(t, "audio failed", noteDetail(rep))
}
