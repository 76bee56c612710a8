// Package config loads a Context and JSON envelope key overrides from a
// YAML settings document, the form described in COMPONENT DESIGN §4.8. It
// is the primary consumer for the CLI driver; library callers normally
// build a fudge.Context programmatically instead.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fudgemsg/fudge"
	"github.com/fudgemsg/fudge/jsonstream"
)

// Settings is the YAML document shape consumed by LoadSettings: envelope
// key overrides for the JSON surface, taxonomy tables to preload, and a
// default schema version that BuildContext stores on the Context.
type Settings struct {
	JSONEnvelopeKeys struct {
		ProcessingDirectivesField string `yaml:"processingDirectivesField"`
		SchemaVersionField        string `yaml:"schemaVersionField"`
		TaxonomyField             string `yaml:"taxonomyField"`
	} `yaml:"jsonEnvelopeKeys"`
	Taxonomies []struct {
		ID    int16            `yaml:"id"`
		Table map[int16]string `yaml:"table"`
	} `yaml:"taxonomies"`
	DefaultSchemaVersion uint8 `yaml:"defaultSchemaVersion"`
}

// Load reads path and parses it as a Settings document without building a
// Context, for callers that only need the JSON key overrides.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &fudge.IOFailure{Op: "reading settings file", Err: err}
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("fudge: parsing settings %s: %w", path, err)
	}
	return &s, nil
}

// BuildContext builds a fudge.Context from s, registering every taxonomy
// table it names.
func (s *Settings) BuildContext() *fudge.Context {
	ctx := fudge.NewContext()
	ctx.DefaultSchemaVersion = s.DefaultSchemaVersion
	for _, t := range s.Taxonomies {
		ctx.Taxonomies().Register(t.ID, fudge.NewTaxonomy(t.Table))
	}
	return ctx
}

// LoadSettings reads a YAML settings document from path and builds a
// fudge.Context from it. Callers that also need the JSON key overrides
// should use Load and Settings.BuildContext directly instead, to avoid
// parsing the document twice.
func LoadSettings(path string) (*fudge.Context, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return s.BuildContext(), nil
}

// JSONKeys returns the jsonstream.EnvelopeKeys s requests, falling back to
// jsonstream.DefaultEnvelopeKeys for any field left blank.
func (s *Settings) JSONKeys() jsonstream.EnvelopeKeys {
	keys := jsonstream.DefaultEnvelopeKeys()
	if s.JSONEnvelopeKeys.ProcessingDirectivesField != "" {
		keys.ProcessingDirectives = s.JSONEnvelopeKeys.ProcessingDirectivesField
	}
	if s.JSONEnvelopeKeys.SchemaVersionField != "" {
		keys.SchemaVersion = s.JSONEnvelopeKeys.SchemaVersionField
	}
	if s.JSONEnvelopeKeys.TaxonomyField != "" {
		keys.Taxonomy = s.JSONEnvelopeKeys.TaxonomyField
	}
	return keys
}
