package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the embedded configuration JSON schema.
func Schema() []byte {
	return schemaJSON
}

// Issue is one schema violation found in a config file.
type Issue struct {
	Field       string
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Description)
}

// ValidateFile checks a YAML config file against the embedded schema. A nil
// issue slice means the file conforms; an error means the file could not be
// read or parsed at all.
func ValidateFile(path string) ([]Issue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return validateYAML(raw)
}

func validateYAML(raw []byte) ([]Issue, error) {
	var doc any

	err := yaml.Unmarshal(raw, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if doc == nil {
		return nil, nil
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, Issue{Field: verr.Field(), Description: verr.Description()})
	}

	return issues, nil
}
