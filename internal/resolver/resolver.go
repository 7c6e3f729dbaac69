package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
)

// Resolver produces the value for a single field node. Implementations
// interpolate the node's prompt template against the note's current
// values and call a generation provider with the result. Returning an
// empty value with a nil error means the resolver declined to generate;
// the field is left as it was.
type Resolver interface {
	Resolve(ctx context.Context, node *model.FieldNode, n note.Note) (string, error)
}

// Registry dispatches field nodes to resolvers by field type.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[model.FieldType]Resolver
}

// NewRegistry creates an empty resolver registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[model.FieldType]Resolver)}
}

// Register adds a resolver for a field type. Registering the same type
// twice or an unknown type is an error.
func (r *Registry) Register(fieldType model.FieldType, res Resolver) error {
	if res == nil {
		return fmt.Errorf("resolver for field type %q is nil", fieldType)
	}
	if !fieldType.IsValid() {
		return fmt.Errorf("unknown field type %q", fieldType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resolvers[fieldType]; exists {
		return fmt.Errorf("resolver for field type %q already registered", fieldType)
	}
	r.resolvers[fieldType] = res
	return nil
}

// Get returns the resolver for a field type. A type without a resolver
// is a wiring gap, typically a provider whose credentials were never
// configured.
func (r *Registry) Get(fieldType model.FieldType) (Resolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resolvers[fieldType]
	if !ok {
		return nil, fmt.Errorf("no resolver registered for field type %q", fieldType)
	}
	return res, nil
}

// Types returns the registered field types in sorted order.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]model.FieldType, 0, len(r.resolvers))
	for fieldType := range r.resolvers {
		types = append(types, fieldType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
