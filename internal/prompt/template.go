package prompt

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Fields returns the field references in a template, lowercased, in
// document order. Duplicates are preserved.
func Fields(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}

	fields := make([]string, 0, len(matches))
	for _, match := range matches {
		fields = append(fields, strings.ToLower(match[1]))
	}
	return fields
}

// Interpolate substitutes {{field}} placeholders with values. Keys in
// values must be lowercase; placeholder matching is case-insensitive.
//
// A template with no placeholders passes through untouched. When every
// referenced value is empty the template declines (ok false). When only
// some are empty, allowEmpty decides between substituting blanks and
// declining.
func Interpolate(template string, values map[string]string, allowEmpty bool) (string, bool) {
	fields := Fields(template)
	if len(fields) == 0 {
		return template, true
	}

	// Lowercase the placeholder names in place so replacement below can
	// match regardless of how the user cased them.
	lowered := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		inner := placeholderPattern.FindStringSubmatch(m)
		return "{{" + strings.ToLower(inner[1]) + "}}"
	})

	anyFilled := false
	allFilled := true
	resolved := make([]string, len(fields))
	for i, field := range fields {
		value := values[field]
		resolved[i] = value
		if value != "" {
			anyFilled = true
		} else {
			allFilled = false
		}
	}

	if !anyFilled || (!allFilled && !allowEmpty) {
		return "", false
	}

	for i, field := range fields {
		lowered = strings.ReplaceAll(lowered, "{{"+field+"}}", resolved[i])
	}
	return lowered, true
}
