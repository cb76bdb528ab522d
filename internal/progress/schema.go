package progress

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const snapshotSchemaURL = "schema://grindlog-progress.json"

// snapshotSchema constrains structure and types only. Every field is optional
// so that older snapshots still load; missing values come from the seed.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "user": {"type": "string"},
    "startDate": {"type": "string"},
    "targetDate": {"type": "string"},
    "totalProblems": {"type": "integer", "minimum": 0},
    "currentTotal": {"type": "integer"},
    "streak": {"type": "integer", "minimum": 0},
    "lastCompletedDate": {"type": ["string", "null"]},
    "days": {
      "type": ["object", "null"],
      "additionalProperties": {"$ref": "#/$defs/day"}
    }
  },
  "$defs": {
    "day": {
      "type": "object",
      "properties": {
        "date": {"type": "string"},
        "theme": {"type": "string"},
        "url": {"type": ["string", "null"]},
        "notes": {"type": ["string", "null"]},
        "problems": {
          "type": ["array", "null"],
          "maxItems": 6,
          "items": {"$ref": "#/$defs/problem"}
        }
      }
    },
    "problem": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "integer", "minimum": 1, "maximum": 6},
        "completed": {"type": "boolean"},
        "link": {"type": ["string", "null"]},
        "completedAt": {"type": ["string", "null"]}
      }
    }
  }
}`

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func loadSnapshotSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(snapshotSchema), &doc); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(snapshotSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateSnapshot checks raw JSON against the snapshot schema.
func validateSnapshot(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := loadSnapshotSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
