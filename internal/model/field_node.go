package model

// FieldType identifies the generation capability a smart field uses.
type FieldType string

const (
	// FieldTypeChat fills the field with text from a chat completion.
	FieldTypeChat FieldType = "chat"
	// FieldTypeTTS fills the field with synthesized speech.
	FieldTypeTTS FieldType = "tts"
	// FieldTypeImage fills the field with a generated image.
	FieldTypeImage FieldType = "image"
)

// IsValid reports whether t is a supported generation type.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeChat, FieldTypeTTS, FieldTypeImage:
		return true
	default:
		return false
	}
}

// FieldNode is one vertex in a note's field dependency graph. The graph
// mapping owns every node; edges are stored as field identifiers rather
// than pointers so that removing a node never leaves a dangling reference.
type FieldNode struct {
	// Field is the lowercase identifier, unique within a graph.
	Field string

	// DisplayField is the field name in its canonical case, used when
	// writing back to the note.
	DisplayField string

	// ExistingValue is the field content captured at graph build time.
	ExistingValue string

	// InEdges holds fields this node's template references; OutEdges holds
	// fields whose templates reference this node. The builder keeps the two
	// directions mirror-consistent, and the scheduler removes entries as
	// producers resolve.
	InEdges  map[string]struct{}
	OutEdges map[string]struct{}

	// IsManual means the field only generates when explicitly requested.
	IsManual bool

	// Overwrite allows replacing a non-empty existing value.
	Overwrite bool

	// IsTarget marks the single field requested in target mode.
	IsTarget bool

	// GenerateDespiteManual is set on dependencies of the target so they
	// run even when marked manual.
	GenerateDespiteManual bool

	// Type selects which resolver handles this field.
	Type FieldType

	// DeckID is the deck context the prompt was resolved under.
	DeckID int64

	// PromptTemplate is the raw template, with {{field}} placeholders.
	PromptTemplate string

	// Aborted is set during scheduling when a manual ancestor blocks
	// generation. It propagates to every descendant.
	Aborted bool

	// DidUpdate is set once a value was actually produced and written.
	DidUpdate bool
}

// NewFieldNode returns a node with initialized edge sets.
func NewFieldNode(field, displayField string) *FieldNode {
	return &FieldNode{
		Field:        field,
		DisplayField: displayField,
		InEdges:      make(map[string]struct{}),
		OutEdges:     make(map[string]struct{}),
	}
}

// Ready reports whether every producer of this node has resolved.
func (n *FieldNode) Ready() bool {
	return len(n.InEdges) == 0
}
