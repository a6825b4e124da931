package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema document names under schemas/.
const (
	docProfile   = "session-profile.json"
	docNameCard  = "name-card.json"
	docSelection = "expert-selection.json"
	docSanity    = "sanity-check.json"
)

// ValidationError reports that an extracted payload did not match a stage
// schema. The wrapped jsonschema error carries precise field paths.
type ValidationError struct {
	Doc string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Doc, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
)

// compiledSchema returns the compiled schema for a document name. The embedded
// schemas are trusted input, so compilation failures panic at first use.
func compiledSchema(doc string) *jsonschema.Schema {
	compileOnce.Do(func() {
		compiled = make(map[string]*jsonschema.Schema)
		c := jsonschema.NewCompiler()
		for _, doc := range []string{docProfile, docNameCard, docSelection, docSanity} {
			data, err := schemaFS.ReadFile("schemas/" + doc)
			if err != nil {
				panic(fmt.Sprintf("schema: embedded %s: %v", doc, err))
			}
			if err := c.AddResource(doc, bytes.NewReader(data)); err != nil {
				panic(fmt.Sprintf("schema: add %s: %v", doc, err))
			}
		}
		for _, doc := range []string{docProfile, docNameCard, docSelection, docSanity} {
			compiled[doc] = c.MustCompile(doc)
		}
	})
	return compiled[doc]
}

// decode validates v against the named schema and maps it onto out through a
// JSON round trip, so custom unmarshalers (Finalist combos) still apply.
func decode(doc string, v any, out any) error {
	if err := compiledSchema(doc).Validate(v); err != nil {
		return &ValidationError{Doc: doc, Err: err}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("schema: remarshal %s: %w", doc, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationError{Doc: doc, Err: err}
	}
	return nil
}

// DecodeProfile validates and decodes a SessionProfile payload.
func DecodeProfile(v any) (*SessionProfile, error) {
	var p SessionProfile
	if err := decode(docProfile, v, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeNameCard validates and decodes a NameCard payload.
func DecodeNameCard(v any) (*NameCard, error) {
	var c NameCard
	if err := decode(docNameCard, v, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeSelection validates and decodes an ExpertSelection payload.
func DecodeSelection(v any) (*ExpertSelection, error) {
	var s ExpertSelection
	if err := decode(docSelection, v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeSanityCheck validates and decodes a SanityCheckResult payload.
func DecodeSanityCheck(v any) (*SanityCheckResult, error) {
	var r SanityCheckResult
	if err := decode(docSanity, v, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
