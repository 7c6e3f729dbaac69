package prompt

import (
	"sort"
	"strconv"
	"strings"

	"github.com/notesmith/notesmith/internal/config"
)

// ForNote returns the field -> template mapping that applies to a note of
// the given type in the given deck. Field keys are lowercased. Deck-specific
// prompts win; the global deck fills in the rest. An empty result means
// nothing is configured, which callers treat as zero work.
func ForNote(cfg *config.Config, noteType string, deckID int64) map[string]string {
	if cfg == nil {
		return nil
	}
	ntCfg := cfg.NoteTypes[noteType]
	if ntCfg == nil {
		return nil
	}

	merged := make(map[string]string)
	if deck := ntCfg.Decks[deckKey(deckID)]; deck != nil {
		for field, template := range deck.Fields {
			merged[strings.ToLower(field)] = template
		}
	}
	if global := ntCfg.Decks[deckKey(config.GlobalDeckID)]; global != nil {
		for field, template := range global.Fields {
			lower := strings.ToLower(field)
			if _, exists := merged[lower]; !exists {
				merged[lower] = template
			}
		}
	}

	if len(merged) == 0 {
		return nil
	}
	return merged
}

// ExtrasFor returns the generation metadata for a field, falling back from
// the deck entry to the global deck entry to the defaults. Never nil.
func ExtrasFor(cfg *config.Config, noteType, field string, deckID int64) *config.FieldExtras {
	if cfg == nil {
		return config.DefaultExtras()
	}
	ntCfg := cfg.NoteTypes[noteType]
	if ntCfg == nil {
		return config.DefaultExtras()
	}

	lower := strings.ToLower(field)
	if deck := ntCfg.Decks[deckKey(deckID)]; deck != nil {
		if extras := lookupExtras(deck, lower); extras != nil {
			return extras
		}
	}
	if global := ntCfg.Decks[deckKey(config.GlobalDeckID)]; global != nil {
		if extras := lookupExtras(global, lower); extras != nil {
			return extras
		}
	}
	return config.DefaultExtras()
}

// ChainedFields returns the smart fields whose templates reference another
// smart field, sorted for stable output.
func ChainedFields(cfg *config.Config, noteType string, deckID int64) []string {
	prompts := ForNote(cfg, noteType, deckID)
	if len(prompts) == 0 {
		return nil
	}

	var chained []string
	for field, template := range prompts {
		for _, ref := range Fields(template) {
			if ref == field {
				continue
			}
			if _, isSmart := prompts[ref]; isSmart {
				chained = append(chained, field)
				break
			}
		}
	}

	sort.Strings(chained)
	return chained
}

func lookupExtras(deck *config.DeckConfig, lowerField string) *config.FieldExtras {
	for field, extras := range deck.Extras {
		if strings.ToLower(field) == lowerField {
			return extras
		}
	}
	return nil
}

func deckKey(deckID int64) string {
	return strconv.FormatInt(deckID, 10)
}
