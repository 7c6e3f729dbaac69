package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/resolver"
)

// basicConfig builds a config with one "Basic" note type whose global
// deck carries the given prompts and extras. Hand-built extras must set
// Type explicitly; the YAML defaulting layer is not in play here.
func basicConfig(fields map[string]string, extras map[string]*config.FieldExtras) *config.Config {
	return &config.Config{
		Version:  "1.0",
		Settings: config.DefaultSettings(),
		NoteTypes: map[string]*config.NoteTypeConfig{
			"Basic": {
				Decks: map[string]*config.DeckConfig{
					"0": {Fields: fields, Extras: extras},
				},
			},
		},
	}
}

func manualChat() *config.FieldExtras {
	return &config.FieldExtras{Type: "chat", Automatic: false}
}

// fakeResolver scripts per-node behavior and records the order nodes
// arrive in.
type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	fn    func(node *model.FieldNode, n note.Note) (string, error)
}

func (f *fakeResolver) Resolve(_ context.Context, node *model.FieldNode, n note.Note) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, node.Field)
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(node, n)
	}
	return "generated " + node.Field, nil
}

func (f *fakeResolver) resolved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func chatRegistry(t *testing.T, res resolver.Resolver) *resolver.Registry {
	t.Helper()
	reg := resolver.NewRegistry()
	require.NoError(t, reg.Register(model.FieldTypeChat, res))
	return reg
}

// resultByField indexes a report for assertions.
func resultByField(t *testing.T, report *model.NoteReport, field string) model.FieldResult {
	t.Helper()
	for _, result := range report.Results {
		if result.Field == field {
			return result
		}
	}
	t.Fatalf("no result recorded for field %q", field)
	return model.FieldResult{}
}
