package resolver

import (
	"context"
	"fmt"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
)

// DryRun stands in for every generating resolver during a rehearsal
// pass. It interpolates prompts the same way the live resolvers do, so
// the set of fields it fills matches what a real run would generate,
// but it never calls a provider. The marker values it produces are for
// inspection only and must not be persisted.
type DryRun struct {
	cfg *config.Config
}

// NewDryRun builds a rehearsal resolver over the configuration.
func NewDryRun(cfg *config.Config) *DryRun {
	return &DryRun{cfg: cfg}
}

func (r *DryRun) Resolve(_ context.Context, node *model.FieldNode, n note.Note) (string, error) {
	if _, ok := prompt.Interpolate(node.PromptTemplate, note.LowercaseValues(n), r.cfg.Settings.AllowEmptyFields); !ok {
		return "", nil
	}
	return fmt.Sprintf("(dry run: %s)", node.Type), nil
}
