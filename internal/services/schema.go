package services

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const tasksSchemaURL = "tasks.schema.json"

const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "description", "createdAt", "completed"],
    "properties": {
      "id": {"type": "string"},
      "title": {"type": "string"},
      "description": {"type": "string"},
      "createdAt": {
        "type": "string",
        "pattern": "^[0-9]{2}\\.[0-9]{2}\\.[0-9]{4} [0-9]{2}:[0-9]{2}:[0-9]{2}$"
      },
      "completed": {"type": "boolean"}
    }
  }
}`

var compiledTasksSchema = jsonschema.MustCompileString(tasksSchemaURL, tasksSchema)

// checkPayload validates the raw persisted payload before it is decoded into records.
func checkPayload(raw string) error {
	var doc interface{}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("parse payload: trailing data after JSON array")
	}

	if err := compiledTasksSchema.Validate(doc); err != nil {
		return firstSchemaError(err)
	}
	return nil
}

func firstSchemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	if ve.InstanceLocation == "" {
		return fmt.Errorf("invalid payload: %s", ve.Message)
	}
	return fmt.Errorf("invalid payload at %s: %s", ve.InstanceLocation, ve.Message)
}
