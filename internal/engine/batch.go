package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
)

// BatchProgress reports how far a run has advanced after each note.
type BatchProgress struct {
	Done   int
	Total  int
	NoteID int64
	Report *model.NoteReport
}

// BatchRunner drives generation over a set of notes, chunked by the
// configured batch limit with a bounded number of notes in flight.
type BatchRunner struct {
	cfg       *config.Config
	scheduler *Scheduler
	guard     *Guard
	log       *logger.Logger

	// OnProgress, when set, receives an event after each note settles.
	// Calls are serialized.
	OnProgress func(BatchProgress)
}

// NewBatchRunner creates a runner over the given configuration.
func NewBatchRunner(cfg *config.Config, scheduler *Scheduler, log *logger.Logger) *BatchRunner {
	return &BatchRunner{cfg: cfg, scheduler: scheduler, guard: NewGuard(), log: log}
}

// Run processes every item and aggregates the outcomes. A note failure
// never stops the run; only context cancellation does, and the partial
// report is still returned alongside the cancellation error.
func (r *BatchRunner) Run(ctx context.Context, items []note.Item, overwrite bool) (*model.BatchReport, []*model.NoteReport, error) {
	started := time.Now()
	report := &model.BatchReport{RunID: uuid.NewString(), Timestamp: started}

	r.log.WithFields(map[string]any{
		"run_id": report.RunID,
		"notes":  len(items),
	}).Info("starting batch run")

	reports := make([]*model.NoteReport, len(items))
	var mu sync.Mutex
	done := 0

	limit := r.cfg.Settings.BatchLimit
	for chunk := 0; chunk < len(items); chunk += limit {
		end := min(chunk+limit, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Settings.Parallel)

		for i := chunk; i < end; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				rep := r.processItem(gctx, items[i], overwrite)

				mu.Lock()
				reports[i] = rep
				done++
				if r.OnProgress != nil {
					r.OnProgress(BatchProgress{
						Done:   done,
						Total:  len(items),
						NoteID: items[i].Note.ID(),
						Report: rep,
					})
				}
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			summarize(report, reports, started)
			return report, compactReports(reports), err
		}
	}

	summarize(report, reports, started)
	r.log.WithFields(map[string]any{
		"run_id":  report.RunID,
		"updated": report.Updated,
		"failed":  report.Failed,
		"skipped": report.Skipped,
	}).Info("batch run finished")
	return report, compactReports(reports), nil
}

// processItem runs one note through the scheduler, honoring the skip
// rules that keep batch passes cheap on already-filled collections.
func (r *BatchRunner) processItem(ctx context.Context, item note.Item, overwrite bool) *model.NoteReport {
	n := item.Note
	rep := &model.NoteReport{NoteID: n.ID(), NoteType: n.NoteType()}

	if len(prompt.ForNote(r.cfg, n.NoteType(), item.DeckID)) == 0 {
		r.log.WithFields(map[string]any{"note_id": n.ID()}).Debug("no prompts configured, skipping note")
		return rep
	}

	if !overwrite && !r.cfg.Settings.RegenerateNotesWhenBatching && note.FullyProcessed(n, item.DeckID, r.cfg) {
		r.log.WithFields(map[string]any{"note_id": n.ID()}).Debug("note fully processed, skipping")
		return rep
	}

	if !r.guard.TryAcquire(n) {
		r.log.WithFields(map[string]any{"note_id": n.ID()}).Warn("note already being processed, skipping")
		return rep
	}
	defer r.guard.Release(n)

	processed, err := r.scheduler.ProcessNote(ctx, r.cfg, n, item.DeckID, ProcessOptions{Overwrite: overwrite})
	if processed == nil {
		processed = rep
	}
	if err != nil {
		processed.Err = err
	}
	return processed
}

func summarize(report *model.BatchReport, reports []*model.NoteReport, started time.Time) {
	for _, rep := range reports {
		switch {
		case rep == nil:
		case rep.Failed():
			report.Failed++
		case rep.DidUpdate:
			report.Updated++
		default:
			report.Skipped++
		}
	}
	report.Duration = time.Since(started)
}

func compactReports(reports []*model.NoteReport) []*model.NoteReport {
	out := make([]*model.NoteReport, 0, len(reports))
	for _, rep := range reports {
		if rep != nil {
			out = append(out, rep)
		}
	}
	return out
}
