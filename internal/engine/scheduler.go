package engine

import (
	"context"
	"sync"
	"time"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/resolver"
	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

// Scheduler resolves a note's dependency graph tier by tier. Nodes with
// no pending dependencies form the frontier and resolve concurrently;
// note writes and graph mutation happen serially once the whole tier
// has finished.
type Scheduler struct {
	resolvers *resolver.Registry
	log       *logger.Logger
}

// NewScheduler creates a scheduler backed by the given resolver registry.
func NewScheduler(resolvers *resolver.Registry, log *logger.Logger) *Scheduler {
	return &Scheduler{resolvers: resolvers, log: log}
}

// ProcessOptions control one generation pass over a note.
type ProcessOptions struct {
	// Overwrite lets fields replace non-empty existing values.
	Overwrite bool

	// TargetField restricts the pass to one field and its transitive
	// dependencies.
	TargetField string

	// OnFieldResolved, when set, is called after each field settles.
	// Progress reporting only; failures are carried in the report.
	OnFieldResolved func(field, status string)
}

// ProcessNote builds the note's graph and resolves it to completion.
// Field failures are isolated: the failing field is recorded and every
// other field still runs. The returned error is reserved for conditions
// that stop the whole pass, a cancelled context or a cyclic graph.
func (s *Scheduler) ProcessNote(ctx context.Context, cfg *config.Config, n note.Note, deckID int64, opts ProcessOptions) (*model.NoteReport, error) {
	report := &model.NoteReport{NoteID: n.ID(), NoteType: n.NoteType()}

	graph := BuildGraph(cfg, n, deckID, BuildOptions{
		Overwrite:   opts.Overwrite,
		TargetField: opts.TargetField,
	}, s.log)
	if len(graph) == 0 {
		s.log.WithFields(map[string]any{"note_id": n.ID()}).Debug("empty dependency graph, nothing to resolve")
		return report, nil
	}
	if HasCycle(graph) {
		return report, noteerrors.NewCycleError(graph.Fields())
	}

	for len(graph) > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		frontier := make([]*model.FieldNode, 0, len(graph))
		for _, field := range graph.Fields() {
			if node := graph[field]; node.Ready() {
				frontier = append(frontier, node)
			}
		}
		if len(frontier) == 0 {
			// Unreachable after the cycle pre-check, but a stalled
			// graph must fail loudly rather than spin.
			return report, noteerrors.NewCycleError(graph.Fields())
		}

		type outcome struct {
			value    string
			err      error
			duration time.Duration
		}
		outcomes := make([]outcome, len(frontier))
		var wg sync.WaitGroup

		for idx, node := range frontier {
			wg.Add(1)
			go func(idx int, node *model.FieldNode) {
				defer wg.Done()

				started := time.Now()
				value, err := s.resolveNode(ctx, node, n)
				outcomes[idx] = outcome{value: value, err: err, duration: time.Since(started)}
			}(idx, node)
		}
		wg.Wait()

		for idx, node := range frontier {
			res := outcomes[idx]
			result := model.FieldResult{
				Field:     node.Field,
				Duration:  res.duration,
				Timestamp: time.Now(),
			}

			switch {
			case res.err != nil:
				result.Status = model.StatusFailed
				result.Error = noteerrors.NewResolutionError(node.Field, res.err)
				s.log.WithFields(map[string]any{
					"note_id": n.ID(),
					"field":   node.Field,
				}).Error(res.err, "field resolution failed")
			case node.Aborted:
				result.Status = model.StatusAborted
			case node.DidUpdate:
				result.Status = model.StatusGenerated
			case res.value != "":
				result.Status = model.StatusKept
			default:
				result.Status = model.StatusSkipped
			}

			if res.value != "" {
				if err := n.SetField(node.DisplayField, res.value); err != nil {
					result.Status = model.StatusFailed
					result.Error = noteerrors.NewResolutionError(node.Field, err)
				} else if node.DidUpdate {
					report.DidUpdate = true
				}
			}

			if node.Aborted {
				for out := range node.OutEdges {
					if downstream, ok := graph[out]; ok {
						downstream.Aborted = true
					}
				}
			}
			for out := range node.OutEdges {
				if downstream, ok := graph[out]; ok {
					delete(downstream.InEdges, node.Field)
				}
			}
			delete(graph, node.Field)

			report.Results = append(report.Results, result)
			if opts.OnFieldResolved != nil {
				opts.OnFieldResolved(node.Field, result.Status)
			}
		}
	}

	return report, nil
}

// resolveNode applies the per-node policy. The order is load bearing: an
// aborted node stays silent, a manual node outside target scope poisons
// its descendants, a non-empty field without overwrite passes its value
// through untouched, and only then does a resolver run.
func (s *Scheduler) resolveNode(ctx context.Context, node *model.FieldNode, n note.Note) (string, error) {
	if node.Aborted {
		return "", nil
	}

	if node.IsManual && !(node.IsTarget || node.GenerateDespiteManual) {
		node.Aborted = true
		s.log.WithFields(map[string]any{"field": node.Field}).Debug("manual field halts generation downstream")
		return "", nil
	}

	// Consult the note's live value, not the build-time snapshot.
	value := n.GetField(node.DisplayField)
	if value != "" && !(node.IsTarget || node.Overwrite) {
		return value, nil
	}

	res, err := s.resolvers.Get(node.Type)
	if err != nil {
		return "", err
	}

	produced, err := res.Resolve(ctx, node, n)
	if err != nil {
		return "", err
	}
	if produced != "" {
		node.DidUpdate = true
	}
	return produced, nil
}
