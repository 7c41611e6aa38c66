// internal/service/renderer.go
package service

import (
	"regexp"
	"strings"

	apperrors "github.com/Tasknova/What-app-Nandlal-sub001/internal/errors"
	"github.com/Tasknova/What-app-Nandlal-sub001/internal/model"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Placeholders returns the distinct placeholder names across the given
// template sections, in first-seen order.
func Placeholders(texts ...string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, text := range texts {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// ValidateMapping requires every placeholder to have a mapping entry. It runs
// before any contact is processed; a hole here fails the whole campaign.
func ValidateMapping(placeholders []string, mapping model.VariableMapping) error {
	missing := []string{}
	for _, p := range placeholders {
		if _, ok := mapping[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &apperrors.UnmappedPlaceholdersError{Placeholders: missing}
	}
	return nil
}

// Render expands placeholders against one contact. Resolved values that are
// missing or blank become the empty string; Render itself never fails. Pure,
// safe for concurrent use.
func Render(templateText string, mapping model.VariableMapping, contact *model.Contact) string {
	return placeholderRe.ReplaceAllStringFunc(templateText, func(token string) string {
		name := strings.TrimSpace(strings.Trim(token, "{}"))
		path, ok := mapping[name]
		if !ok {
			return ""
		}
		return contact.Field(path)
	})
}
