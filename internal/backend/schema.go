package backend

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// The hosted backend is third-party: its payloads are validated before they
// enter the aggregation path so malformed responses surface as bad_data
// instead of zero-value books.
const searchResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["books", "categories"],
  "properties": {
    "books": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "author": {"type": "string"},
          "cover_url": {"type": "string"},
          "created_at": {"type": "string"}
        }
      }
    },
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var searchSchema = gojsonschema.NewStringLoader(searchResponseSchema)

func validateSearchPayload(data []byte) error {
	res, err := gojsonschema.Validate(searchSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	if !res.Valid() {
		first := "unknown violation"
		if errs := res.Errors(); len(errs) > 0 {
			first = errs[0].String()
		}
		return fmt.Errorf("schema violation: %s", first)
	}
	return nil
}
