package resolver

import (
	"context"

	"github.com/notesmith/notesmith/internal/model"
)

// Gate is asked before every generation whether the kind still has
// capacity. Returning a CapacityError declines the generation quietly;
// any other error fails it.
type Gate interface {
	Allow(ctx context.Context, kind model.FieldType) error
}

type openGate struct{}

func (openGate) Allow(context.Context, model.FieldType) error { return nil }

// OpenGate returns a gate that always allows generation.
func OpenGate() Gate {
	return openGate{}
}
