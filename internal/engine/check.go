package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

// CheckTemplate validates one prompt template against a note before the
// template is saved. It rejects references to fields the note does not
// have, references to audio or image fields (their values are media
// markup, useless as prompt text), self-references, and any edit that
// would close a dependency cycle. targetField is the field the template
// generates.
func CheckTemplate(cfg *config.Config, n note.Note, deckID int64, targetField, template string) error {
	noteFields := make(map[string]struct{}, len(n.Fields()))
	for _, field := range n.Fields() {
		noteFields[strings.ToLower(field)] = struct{}{}
	}

	lowerTarget := strings.ToLower(strings.TrimSpace(targetField))
	refs := prompt.Fields(template)

	for _, ref := range refs {
		if _, ok := noteFields[ref]; !ok {
			return noteerrors.NewValidationError(targetField, fmt.Sprintf("invalid field in prompt: %s", ref), nil)
		}
		if ref == lowerTarget {
			return noteerrors.NewValidationError(targetField, "the prompt cannot reference the field it generates", nil)
		}

		extras := prompt.ExtrasFor(cfg, n.NoteType(), ref, deckID)
		switch model.FieldType(extras.Type) {
		case model.FieldTypeTTS:
			return noteerrors.NewValidationError(targetField, fmt.Sprintf("prompts cannot reference tts fields: %s", ref), nil)
		case model.FieldTypeImage:
			return noteerrors.NewValidationError(targetField, fmt.Sprintf("prompts cannot reference image fields: %s", ref), nil)
		}
	}

	prompts := prompt.ForNote(cfg, n.NoteType(), deckID)
	merged := make(map[string]string, len(prompts)+1)
	for field, tpl := range prompts {
		merged[field] = tpl
	}
	if lowerTarget != "" {
		merged[lowerTarget] = template
	}

	graph := BuildGraph(cfg, n, deckID, BuildOptions{OverridePrompts: merged}, nil)
	if HasCycle(graph) {
		return noteerrors.NewValidationError(targetField, "smart fields referencing other smart fields cannot form a cycle", nil)
	}
	return nil
}

// FieldIssue pairs a field with the first problem found in its template.
type FieldIssue struct {
	Field   string
	Message string
}

// ValidateNotePrompts runs CheckTemplate over every prompt configured
// for a note, collecting one issue per failing field in sorted field
// order.
func ValidateNotePrompts(cfg *config.Config, n note.Note, deckID int64) []FieldIssue {
	prompts := prompt.ForNote(cfg, n.NoteType(), deckID)
	fields := make([]string, 0, len(prompts))
	for field := range prompts {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var issues []FieldIssue
	for _, field := range fields {
		err := CheckTemplate(cfg, n, deckID, field, prompts[field])
		if err == nil {
			continue
		}

		message := err.Error()
		var validationErr *noteerrors.ValidationError
		if errors.As(err, &validationErr) {
			message = validationErr.Message
		}
		issues = append(issues, FieldIssue{Field: field, Message: message})
	}
	return issues
}
