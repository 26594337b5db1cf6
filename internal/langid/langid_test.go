package langid

import (
	"testing"

	"github.com/abadojack/whatlanggo"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/rules"
)

func TestDetectorFallsBackToEnglishForBlankText(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		if got := d.Identify(text); got != domain.English {
			t.Errorf("Identify(%q) = %q, want en", text, got)
		}
	}
}

func TestDetectorRecognizesSupportedLanguages(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	tests := []struct {
		text string
		want domain.Language
	}{
		{"Hello, could you please tell me what time the swimming pool opens in the morning?", domain.English},
		{"Bonjour, pourriez-vous me dire à quelle heure la piscine ouvre le matin, s'il vous plaît?", domain.French},
		{"مرحبا، هل يمكنك أن تخبرني متى يفتح المسبح في الصباح من فضلك؟", domain.Arabic},
	}
	for _, tt := range tests {
		if got := d.Identify(tt.text); got != tt.want {
			t.Errorf("Identify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestUnsupportedLanguageMapsToEnglish(t *testing.T) {
	t.Parallel()

	for _, l := range []whatlanggo.Lang{whatlanggo.Spa, whatlanggo.Deu, whatlanggo.Rus, whatlanggo.Eng, -1} {
		if got := fromWhatlang(l); got != domain.English {
			t.Errorf("fromWhatlang(%v) = %q, want en", l, got)
		}
	}
	if got := fromWhatlang(whatlanggo.Fra); got != domain.French {
		t.Errorf("fromWhatlang(Fra) = %q, want fr", got)
	}
	if got := fromWhatlang(whatlanggo.Arb); got != domain.Arabic {
		t.Errorf("fromWhatlang(Arb) = %q, want ar", got)
	}
}

func TestFixedIdentifier(t *testing.T) {
	t.Parallel()

	if got := Fixed(domain.French).Identify("hello"); got != domain.French {
		t.Errorf("Fixed(fr) = %q", got)
	}
	if got := Fixed("de").Identify("hallo"); got != domain.English {
		t.Errorf("Fixed(de) = %q, want en", got)
	}
}

func TestDetectorShortArabicMessages(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	for _, text := range []string{"مرحبا", "شكرا", "اهلا", "سلام", "واي فاي؟"} {
		if got := d.Identify(text); got != domain.Arabic {
			t.Errorf("Identify(%q) = %q, want ar", text, got)
		}
	}
}

// Every Arabic pattern of the shipped rule file must reach the Arabic rules.
// Short Latin-script patterns such as "merci" are too short for trigram
// detection to separate French from English, so those are only required not
// to land on Arabic and are reported when they miss.
func TestDetectorRoutesShippedPatterns(t *testing.T) {
	t.Parallel()

	rs, err := rules.LoadFile("../../json/intent.json")
	if err != nil {
		t.Fatalf("load shipped rules: %v", err)
	}

	d := NewDetector(nil)
	for _, intent := range rs.Intents() {
		for _, pattern := range intent.Patterns {
			got := d.Identify(pattern)
			switch {
			case intent.Language == domain.Arabic:
				if got != domain.Arabic {
					t.Errorf("%s: Identify(%q) = %q, want ar", intent.Tag, pattern, got)
				}
			case got == domain.Arabic:
				t.Errorf("%s: Latin-script pattern %q identified as ar", intent.Tag, pattern)
			case got != intent.Language:
				t.Logf("%s: short pattern %q identified as %q", intent.Tag, pattern, got)
			}
		}
	}
}
