package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	deckIDPattern = regexp.MustCompile(`^-?\d+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("deck_id", func(fl validator.FieldLevel) bool {
			return deckIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the
// configuration. Template contents are not inspected here; reference and
// cycle checking over templates belongs to the graph layer.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return noteerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	for _, noteType := range sortedKeys(cfg.NoteTypes) {
		ntCfg := cfg.NoteTypes[noteType]
		if ntCfg == nil {
			return noteerrors.NewValidationError(fieldForNoteType(noteType, ""), "note type configuration is empty", nil)
		}

		for _, deckKey := range sortedKeys(ntCfg.Decks) {
			deck := ntCfg.Decks[deckKey]
			if deck == nil {
				return noteerrors.NewValidationError(fieldForDeck(noteType, deckKey, ""), "deck configuration is empty", nil)
			}

			if err := validateDeck(noteType, deckKey, deck); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateDeck checks one deck's field and extras maps for internal
// consistency: unique field names ignoring case, and extras entries that
// match a configured field.
func validateDeck(noteType, deckKey string, deck *DeckConfig) error {
	seen := make(map[string]string, len(deck.Fields))
	for _, field := range sortedKeys(deck.Fields) {
		lower := strings.ToLower(field)
		if prev, exists := seen[lower]; exists {
			return noteerrors.NewValidationError(
				fieldForDeck(noteType, deckKey, "fields"),
				fmt.Sprintf("field %q duplicates %q: names must be unique ignoring case", field, prev),
				nil,
			)
		}
		seen[lower] = field

		if strings.TrimSpace(deck.Fields[field]) == "" {
			return noteerrors.NewValidationError(
				fieldForDeck(noteType, deckKey, "fields"),
				fmt.Sprintf("field %q has an empty prompt template", field),
				nil,
			)
		}
	}

	for _, field := range sortedKeys(deck.Extras) {
		if _, exists := seen[strings.ToLower(field)]; !exists {
			return noteerrors.NewValidationError(
				fieldForDeck(noteType, deckKey, "extras"),
				fmt.Sprintf("extras entry %q has no matching field", field),
				nil,
			)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return noteerrors.NewValidationError(field, msg, err)
	}

	return noteerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForNoteType(noteType, field string) string {
	if field == "" {
		return fmt.Sprintf("note_types[%s]", noteType)
	}
	return fmt.Sprintf("note_types[%s].%s", noteType, field)
}

func fieldForDeck(noteType, deckKey, field string) string {
	if field == "" {
		return fmt.Sprintf("note_types[%s].decks[%s]", noteType, deckKey)
	}
	return fmt.Sprintf("note_types[%s].decks[%s].%s", noteType, deckKey, field)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
