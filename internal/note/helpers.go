package note

import (
	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/prompt"
)

// FullyProcessed reports whether every automatic smart field on the note
// already has a value. Notes that pass need no generation run; manual
// fields never count against them.
func FullyProcessed(n Note, deckID int64, cfg *config.Config) bool {
	prompts := prompt.ForNote(cfg, n.NoteType(), deckID)
	if len(prompts) == 0 {
		return true
	}

	values := LowercaseValues(n)
	for field := range prompts {
		if values[field] != "" {
			continue
		}
		extras := prompt.ExtrasFor(cfg, n.NoteType(), field, deckID)
		if extras.Automatic {
			return false
		}
	}
	return true
}
