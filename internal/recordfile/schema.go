// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package recordfile

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the record document schema.
const SchemaID = "https://holomush.dev/schemas/credential-record.schema.json"

// compiledSchema compiles the reflected schema once per process.
var compiledSchema = sync.OnceValues(compileSchema)

// GenerateSchema generates a JSON Schema from the Document struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Document{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "HoloMUSH Credential Record"
	schema.Description = "Schema for holocred record documents"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code(CodeSchemaInvalid).
			With("operation", "marshal schema").
			Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates JSON or YAML data against the record document
// schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code(CodeSchemaInvalid).Errorf("record document is empty")
	}

	// JSON is a subset of YAML, so one parser handles both encodings.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code(CodeParseFailed).Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code(CodeSchemaInvalid).Wrap(err)
	}
	return nil
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code(CodeSchemaInvalid).
			With("operation", "parse schema").
			Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(SchemaID, schemaData); err != nil {
		return nil, oops.Code(CodeSchemaInvalid).
			With("operation", "add schema resource").
			Wrap(err)
	}

	sch, err := c.Compile(SchemaID)
	if err != nil {
		return nil, oops.Code(CodeSchemaInvalid).
			With("operation", "compile schema").
			Wrap(err)
	}
	return sch, nil
}

// toJSONTypes converts YAML-decoded values to the types a JSON decoder would
// produce. Timestamps and other YAML-only scalars go through a JSON round
// trip.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = toJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = toJSONTypes(v)
		}
		return result
	case nil, string, bool, int, int64, uint64, float64:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}
