package normalize

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const questionSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "text", "options", "correctAnswer"],
    "properties": {
      "id": {"type": ["string", "integer"]},
      "text": {"type": "string", "minLength": 1},
      "options": {
        "type": ["array", "string"],
        "items": {"type": ["string", "number"]}
      },
      "correctAnswer": {"type": ["string", "number"]}
    }
  }
}`

const milestoneSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "title"],
    "properties": {
      "id": {"type": ["string", "integer"]},
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "duration": {"type": "string"},
      "prerequisites": {
        "type": "array",
        "items": {"type": ["string", "integer"]}
      }
    }
  }
}`

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name, src string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var doc any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

func validateSchema(name, src string, doc any, raw string) error {
	compiled, err := compiledSchema(name, src)
	if err != nil {
		return newParseError(StageSchema, raw, "%v", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return newParseError(StageSchema, raw, "%v", err)
	}
	return nil
}
