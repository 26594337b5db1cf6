// Package matcher picks a canned response for a message from the rule set.
package matcher

import (
	"strings"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/rules"
)

// Match returns the response of the first intent tagged for lang that has a
// pattern contained in message, comparing case-insensitively.
//
// Intents are tried in rule-set order and patterns in intent order; the
// first hit wins regardless of how specific later patterns are. Containment
// is plain substring, so "hi" matches inside "this". When nothing matches the
// result carries domain.FallbackResponse.
func Match(rs *rules.RuleSet, message string, lang domain.Language) domain.MatchResult {
	if !lang.Valid() {
		lang = domain.DefaultLanguage
	}
	folded := strings.ToLower(message)

	for _, intent := range rs.ForLanguage(lang) {
		for _, pattern := range intent.Patterns {
			if strings.Contains(folded, strings.ToLower(pattern)) {
				return domain.MatchResult{Response: intent.Response(), Language: lang}
			}
		}
	}

	return domain.MatchResult{Response: domain.FallbackResponse, Language: lang}
}
