package rules

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ashureev/house-assist/internal/domain"
)

//go:embed intents.schema.json
var schemaText string

var intentSchema = jsonschema.MustCompileString("intents.schema.json", schemaText)

// Format is the encoding of a rule document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a Format from a file extension. Unknown extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

var errEmptySource = errors.New("rule source is empty")

// LoadError reports a rule source that is missing, malformed or structurally invalid.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load rules from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type document struct {
	Intents []intentDocument `json:"intents"`
}

type intentDocument struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// LoadFile reads and parses the rule document at path.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("read rule file: %w", err)}
	}
	return Parse(data, FormatFromPath(path), path)
}

// Parse builds a RuleSet from a raw document. Either the whole document is
// valid and a RuleSet is returned, or nothing is.
func Parse(data []byte, format Format, source string) (*RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Source: source, Err: errEmptySource}
	}

	jsonData, err := toJSON(data, format)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("parse rule document: %w", err)}
	}
	if err := intentSchema.Validate(raw); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("validate rule document: %w", err)}
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("decode rule document: %w", err)}
	}

	intents := make([]Intent, 0, len(doc.Intents))
	for i, d := range doc.Intents {
		lang, ok := domain.LanguageOfTag(d.Tag)
		if !ok {
			return nil, &LoadError{
				Source: source,
				Err:    fmt.Errorf("intents[%d] (%q): tag must end with one of _en, _fr, _ar", i, d.Tag),
			}
		}
		intents = append(intents, Intent{
			Tag:       d.Tag,
			Language:  lang,
			Patterns:  d.Patterns,
			Responses: d.Responses,
		})
	}

	sum := sha256.Sum256(data)
	return newRuleSet(intents, source, hex.EncodeToString(sum[:])), nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse rule yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert rule yaml: %w", err)
	}
	return out, nil
}
