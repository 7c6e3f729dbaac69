package note

import (
	"fmt"
	"strings"
)

// Note is the slice of the host's note surface the generation engine needs.
// Field names are case-sensitive as stored; graph logic lowercases them
// internally and maps back to the canonical case for writes.
type Note interface {
	ID() int64
	NoteType() string
	Fields() []string
	HasField(name string) bool
	GetField(name string) string
	SetField(name, value string) error
}

// Field is one named value on a note, in canonical case.
type Field struct {
	Name  string
	Value string
}

// MemNote is an in-memory Note. It preserves the field order it was
// created with, matching how the host lists a note type's fields.
type MemNote struct {
	id       int64
	noteType string
	names    []string
	values   map[string]string
}

// NewMemNote builds a note from ordered fields.
func NewMemNote(id int64, noteType string, fields []Field) *MemNote {
	n := &MemNote{
		id:       id,
		noteType: noteType,
		names:    make([]string, 0, len(fields)),
		values:   make(map[string]string, len(fields)),
	}
	for _, field := range fields {
		n.names = append(n.names, field.Name)
		n.values[field.Name] = field.Value
	}
	return n
}

// ID returns the note's identifier. Zero means the note has not been
// persisted yet.
func (n *MemNote) ID() int64 {
	return n.id
}

// NoteType returns the note type name.
func (n *MemNote) NoteType() string {
	return n.noteType
}

// Fields returns the canonical field names in their stored order.
func (n *MemNote) Fields() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// HasField reports whether the note has a field with this exact name.
func (n *MemNote) HasField(name string) bool {
	_, ok := n.values[name]
	return ok
}

// GetField returns the field's current value, or empty when absent.
func (n *MemNote) GetField(name string) string {
	return n.values[name]
}

// SetField stores a value under an existing field name.
func (n *MemNote) SetField(name, value string) error {
	if _, ok := n.values[name]; !ok {
		return fmt.Errorf("note has no field %q", name)
	}
	n.values[name] = value
	return nil
}

// LowercaseValues flattens a note into a lowercase-keyed value map, the
// form template interpolation expects.
func LowercaseValues(n Note) map[string]string {
	values := make(map[string]string)
	for _, name := range n.Fields() {
		values[strings.ToLower(name)] = n.GetField(name)
	}
	return values
}
