package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
)

func batchItems() []note.Item {
	fresh := note.NewMemNote(1, "Basic", []note.Field{
		{Name: "Word", Value: "agua"},
		{Name: "Definition"},
	})
	broken := note.NewMemNote(2, "Basic", []note.Field{
		{Name: "Word", Value: "fuego"},
		{Name: "Definition"},
	})
	complete := note.NewMemNote(3, "Basic", []note.Field{
		{Name: "Word", Value: "tierra"},
		{Name: "Definition", Value: "already filled"},
	})
	return []note.Item{
		{Note: fresh, DeckID: 0},
		{Note: broken, DeckID: 0},
		{Note: complete, DeckID: 0},
	}
}

func TestBatchRunClassifiesOutcomes(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	fake := &fakeResolver{fn: func(_ *model.FieldNode, n note.Note) (string, error) {
		if n.ID() == 2 {
			return "", errors.New("provider unreachable")
		}
		return "def of " + n.GetField("Word"), nil
	}}
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, fake), logger.Nop()), logger.Nop())

	report, reports, err := runner.Run(context.Background(), batchItems(), false)

	require.NoError(t, err)
	require.NotNil(t, report)

	_, parseErr := uuid.Parse(report.RunID)
	assert.NoError(t, parseErr)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 1, report.ExitCode())
	require.Len(t, reports, 3)

	// Two resolver calls: the fresh note and the broken one. The
	// already complete note never reached a resolver.
	assert.Len(t, fake.resolved(), 2)
	byID := make(map[int64]*model.NoteReport, len(reports))
	for _, rep := range reports {
		byID[rep.NoteID] = rep
	}
	assert.True(t, byID[1].DidUpdate)
	assert.True(t, byID[2].Failed())
	assert.Empty(t, byID[3].Results)
}

func TestBatchRunRegenerateSettingReprocessesCompleteNotes(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	cfg.Settings.RegenerateNotesWhenBatching = true

	fake := &fakeResolver{}
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, fake), logger.Nop()), logger.Nop())

	complete := note.NewMemNote(3, "Basic", []note.Field{
		{Name: "Word", Value: "tierra"},
		{Name: "Definition", Value: "already filled"},
	})
	report, _, err := runner.Run(context.Background(), []note.Item{{Note: complete}}, false)

	require.NoError(t, err)
	// The note is scheduled again, but its filled field is kept rather
	// than regenerated, so the pass lands as a skip.
	assert.Empty(t, fake.resolved())
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "already filled", complete.GetField("Definition"))
}

func TestBatchRunOverwriteForcesRegeneration(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	fake := &fakeResolver{}
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, fake), logger.Nop()), logger.Nop())

	complete := note.NewMemNote(3, "Basic", []note.Field{
		{Name: "Word", Value: "tierra"},
		{Name: "Definition", Value: "already filled"},
	})
	report, _, err := runner.Run(context.Background(), []note.Item{{Note: complete}}, true)

	require.NoError(t, err)
	assert.Equal(t, []string{"definition"}, fake.resolved())
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "generated definition", complete.GetField("Definition"))
}

func TestBatchRunSkipsNotesWithoutPrompts(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	fake := &fakeResolver{}
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, fake), logger.Nop()), logger.Nop())

	cloze := note.NewMemNote(9, "Cloze", []note.Field{{Name: "Text", Value: "..."}})
	report, reports, err := runner.Run(context.Background(), []note.Item{{Note: cloze}}, false)

	require.NoError(t, err)
	assert.Empty(t, fake.resolved())
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Results)
}

func TestBatchRunEmitsSerializedProgress(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, &fakeResolver{}), logger.Nop()), logger.Nop())

	var events []BatchProgress
	runner.OnProgress = func(p BatchProgress) {
		events = append(events, p)
	}

	_, _, err := runner.Run(context.Background(), batchItems(), false)

	require.NoError(t, err)
	require.Len(t, events, 3)
	ids := make([]int64, 0, len(events))
	for i, event := range events {
		assert.Equal(t, i+1, event.Done)
		assert.Equal(t, 3, event.Total)
		require.NotNil(t, event.Report)
		ids = append(ids, event.NoteID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestBatchRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, &fakeResolver{}), logger.Nop()), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, reports, err := runner.Run(ctx, batchItems(), false)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, reports)
}

func TestBatchRunEmptyInput(t *testing.T) {
	t.Parallel()

	cfg := basicConfig(map[string]string{"Definition": "Define {{word}}"}, nil)
	runner := NewBatchRunner(cfg, NewScheduler(chatRegistry(t, &fakeResolver{}), logger.Nop()), logger.Nop())

	report, reports, err := runner.Run(context.Background(), nil, false)

	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Equal(t, 0, report.Total())
	assert.Equal(t, 0, report.ExitCode())
	assert.True(t, report.AllSucceeded())
}
