package partials

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache compiles partial field schemas once per path. A nil entry
// records that no schema exists.
type schemaCache struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{schemas: map[string]*jsonschema.Schema{}}
}

func (c *schemaCache) load(schemaPath string, files Templates) (*jsonschema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if schema, ok := c.schemas[schemaPath]; ok {
		return schema, nil
	}
	if !files.Exists(schemaPath) {
		c.schemas[schemaPath] = nil
		return nil, nil
	}
	raw, err := files.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("partials: read schema %s: %w", schemaPath, err)
	}
	schema, err := compileSchema(schemaPath, raw)
	if err != nil {
		return nil, err
	}
	c.schemas[schemaPath] = schema
	return schema, nil
}

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("partials: add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("partials: compile schema %s: %w", name, err)
	}
	return schema, nil
}

// validateFields checks fields against schema. Values are normalized through
// JSON so the validator sees the types it expects.
func validateFields(schema *jsonschema.Schema, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var parts []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "#"
			}
			parts = append(parts, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(parts, "; ")
}
