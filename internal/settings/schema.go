package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/renpy-helper/renpy-helper/internal/utils"
)

const schemaURL = "https://renpy-helper.dev/schemas/settings.schema.json"

// Schema is the JSON schema of the settings file.
const Schema = `{
  "type": "object",
  "properties": {
    "rembg": {
      "type": "object",
      "properties": {
        "flags": {
          "type": "array",
          "items": {"type": "string"}
        },
        "inputDirectory": {"type": "string"},
        "outputDirectory": {"type": "string"}
      },
      "additionalProperties": false
    }
  }
}`

// ValidationError describes the first schema violation found in a settings file.
type ValidationError struct {
	// Path is the dotted location of the offending value, empty for the root.
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "settings: " + e.Message
	}
	return fmt.Sprintf("settings: %s: %s", e.Path, e.Message)
}

// Validate checks raw settings file contents against Schema. Unlike Load it
// reports every problem as an error, including wrongly typed fields.
func Validate(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &ValidationError{Message: "file is empty"}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(Schema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := schema.Validate(doc); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	var result error
	collectLeafCause(ve, &result)
	if result != nil {
		return result
	}
	return &ValidationError{Message: ve.Message}
}

func collectLeafCause(err *jsonschema.ValidationError, result *error) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*result = &ValidationError{
			Path:    utils.JSONPointerToPath(err.InstanceLocation),
			Message: err.Message,
		}
		return
	}
	for _, cause := range err.Causes {
		if *result == nil {
			collectLeafCause(cause, result)
		}
	}
}
