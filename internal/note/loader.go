package note

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

// Item pairs a note with the deck it is being generated under. Deck context
// comes from where the note is reviewed, not from the note itself.
type Item struct {
	Note   Note
	DeckID int64
}

type notesFile struct {
	Notes []*fixtureNote `yaml:"notes"`
}

type fixtureNote struct {
	ID       int64       `yaml:"id"`
	NoteType string      `yaml:"note_type"`
	DeckID   int64       `yaml:"deck_id"`
	Fields   orderedVals `yaml:"fields"`
}

// orderedVals decodes a YAML mapping while preserving document order,
// which a plain map would lose.
type orderedVals struct {
	fields []Field
}

func (o *orderedVals) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping")
	}
	o.fields = make([]Field, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		o.fields = append(o.fields, Field{
			Name:  value.Content[i].Value,
			Value: value.Content[i+1].Value,
		})
	}
	return nil
}

func (o orderedVals) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range o.fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: field.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: field.Value},
		)
	}
	return node, nil
}

// LoadFile reads a notes document from disk and returns the notes paired
// with their deck context, in document order.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, noteerrors.NewParseError(path, 0, err)
	}

	var doc notesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, noteerrors.NewParseError(path, 0, err)
	}

	items := make([]Item, 0, len(doc.Notes))
	for i, raw := range doc.Notes {
		if raw == nil {
			continue
		}
		if raw.NoteType == "" {
			return nil, noteerrors.NewValidationError(
				fmt.Sprintf("notes[%d]", i), "note_type is required", nil)
		}
		if len(raw.Fields.fields) == 0 {
			return nil, noteerrors.NewValidationError(
				fmt.Sprintf("notes[%d]", i), "at least one field is required", nil)
		}

		items = append(items, Item{
			Note:   NewMemNote(raw.ID, raw.NoteType, raw.Fields.fields),
			DeckID: raw.DeckID,
		})
	}
	return items, nil
}

// SaveFile writes the notes back to disk in the document shape LoadFile
// reads, preserving note and field order. The write is atomic: a temp
// file next to the target is renamed into place, so a watcher never sees
// a half-written document.
func SaveFile(path string, items []Item) error {
	doc := notesFile{Notes: make([]*fixtureNote, 0, len(items))}
	for _, item := range items {
		names := item.Note.Fields()
		fields := make([]Field, 0, len(names))
		for _, name := range names {
			fields = append(fields, Field{Name: name, Value: item.Note.GetField(name)})
		}
		doc.Notes = append(doc.Notes, &fixtureNote{
			ID:       item.Note.ID(),
			NoteType: item.Note.NoteType(),
			DeckID:   item.DeckID,
			Fields:   orderedVals{fields: fields},
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshaling notes: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing notes file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing notes file: %w", err)
	}
	return nil
}
