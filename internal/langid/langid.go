// Package langid classifies free text into the languages the intent rules are written in.
package langid

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"github.com/ashureev/house-assist/internal/domain"
)

// Identifier resolves text to a supported language. Implementations never
// fail: anything they cannot place resolves to domain.DefaultLanguage.
type Identifier interface {
	Identify(text string) domain.Language
}

// Detector is a trigram-based Identifier covering every language whatlanggo
// knows about, so unsupported languages are recognized as such rather than
// forced onto the nearest supported one.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a Detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Identify returns the language of text, or English when detection fails.
func (d *Detector) Identify(text string) (lang domain.Language) {
	if strings.TrimSpace(text) == "" {
		return domain.DefaultLanguage
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("language detection panicked, using default", "panic", r)
			lang = domain.DefaultLanguage
		}
	}()

	info := whatlanggo.Detect(text)
	// Arabic is the only supported Arabic-script language; short messages
	// are often scored as Persian or Urdu.
	if info.Script == unicode.Arabic {
		return domain.Arabic
	}
	return fromWhatlang(info.Lang)
}

func fromWhatlang(l whatlanggo.Lang) domain.Language {
	switch l {
	case whatlanggo.Fra:
		return domain.French
	case whatlanggo.Arb:
		return domain.Arabic
	default:
		return domain.DefaultLanguage
	}
}

// Fixed always reports the same language. Useful where the caller already
// knows the language of the text.
type Fixed domain.Language

// Identify implements Identifier.
func (f Fixed) Identify(string) domain.Language {
	l := domain.Language(f)
	if !l.Valid() {
		return domain.DefaultLanguage
	}
	return l
}

// Ensure implementations satisfy Identifier.
var (
	_ Identifier = (*Detector)(nil)
	_ Identifier = Fixed(domain.English)
)
