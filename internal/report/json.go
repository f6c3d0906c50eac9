package report

import (
	"encoding/json"
	"fmt"
	"io"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// reportSchemaJSON is the wire contract for machine-readable reports. Load
// validates against it before decoding so malformed documents fail with a
// pointer to the offending element instead of a zero-valued Model.
const reportSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["generated_at", "total", "counts", "groups"],
  "properties": {
    "generated_at": {"type": "string"},
    "total": {"type": "integer", "minimum": 0},
    "counts": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["priority", "tasks"],
        "properties": {
          "priority": {"enum": ["critical", "high", "medium", "low", "normal"]},
          "tasks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "file", "line", "keyword", "body", "priority"],
              "properties": {
                "id": {"type": "string"},
                "file": {"type": "string"},
                "line": {"type": "integer", "minimum": 1},
                "keyword": {"type": "string"},
                "assignee": {"type": "string"},
                "body": {"type": "string"},
                "priority": {"enum": ["critical", "high", "medium", "low", "normal"]},
                "enrichment": {
                  "type": "object",
                  "required": ["complexity", "estimated_hours"],
                  "properties": {
                    "complexity": {"enum": ["simple", "moderate", "complex"]},
                    "estimated_hours": {"type": "number", "minimum": 0},
                    "approach": {"type": "string"},
                    "skills": {"type": "array", "items": {"type": "string"}},
                    "risks": {"type": "array", "items": {"type": "string"}}
                  }
                }
              }
            }
          }
        }
      }
    },
    "warnings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["stage", "reason"],
        "properties": {
          "path": {"type": "string"},
          "line": {"type": "integer"},
          "stage": {"enum": ["scan", "enrich"]},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

var reportSchema = jsonschema.MustCompileString("report.schema.json", reportSchemaJSON)

// WriteJSON writes the machine-readable report.
func WriteJSON(w io.Writer, m *Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// Load decodes a machine-readable report produced by WriteJSON.
func Load(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("report: read: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	if err := reportSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("report: validate: %w", leafError(err))
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	return &m, nil
}

// leafError digs the most specific cause out of a schema validation error.
func leafError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation != "" {
		return fmt.Errorf("%s: %s", ve.InstanceLocation, ve.Message)
	}
	return fmt.Errorf("%s", ve.Message)
}
