// Package rules loads and holds the intent rule set shared by every house.
package rules

import (
	"time"

	"github.com/ashureev/house-assist/internal/domain"
)

// Intent bundles trigger patterns with candidate responses for one language.
type Intent struct {
	Tag       string
	Language  domain.Language
	Patterns  []string
	Responses []string
}

// Response returns the response the matcher answers with.
func (i Intent) Response() string {
	return i.Responses[0]
}

// RuleSet is an immutable, ordered collection of intents.
// It is safe for concurrent use once built.
type RuleSet struct {
	intents    []Intent
	byLanguage map[domain.Language][]Intent
	source     string
	hash       string
	loadedAt   time.Time
}

func newRuleSet(intents []Intent, source, hash string) *RuleSet {
	rs := &RuleSet{
		intents:    intents,
		byLanguage: make(map[domain.Language][]Intent, len(domain.Languages)),
		source:     source,
		hash:       hash,
		loadedAt:   time.Now(),
	}
	for _, in := range intents {
		rs.byLanguage[in.Language] = append(rs.byLanguage[in.Language], in)
	}
	return rs
}

// ForLanguage returns the intents tagged for lang, in load order.
// The returned slice must not be modified.
func (rs *RuleSet) ForLanguage(lang domain.Language) []Intent {
	if rs == nil {
		return nil
	}
	return rs.byLanguage[lang]
}

// Intents returns a copy of all intents in load order.
func (rs *RuleSet) Intents() []Intent {
	if rs == nil {
		return nil
	}
	out := make([]Intent, len(rs.intents))
	copy(out, rs.intents)
	return out
}

// Len returns the number of intents.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.intents)
}

// Source returns where the rule set was loaded from.
func (rs *RuleSet) Source() string { return rs.source }

// Hash returns the hex SHA-256 of the raw source document.
func (rs *RuleSet) Hash() string { return rs.hash }

// LoadedAt returns when the rule set was built.
func (rs *RuleSet) LoadedAt() time.Time { return rs.loadedAt }
