package llm

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON-Schema.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles schemaMap once for repeated validation.
func CompileSchema(name string, schemaMap map[string]any) (*Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: schema}, nil
}

// Validate checks data against the schema.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

var (
	entitySchemaOnce sync.Once
	entitySchema     *Schema
	entitySchemaErr  error

	summarySchemaOnce sync.Once
	summarySchema     *Schema
	summarySchemaErr  error
)

// EntitySchema returns the compiled entity response schema.
func EntitySchema() (*Schema, error) {
	entitySchemaOnce.Do(func() {
		entitySchema, entitySchemaErr = CompileSchema("entities.json", BuildEntityJSONSchema())
	})
	return entitySchema, entitySchemaErr
}

// SummarySchema returns the compiled summary response schema.
func SummarySchema() (*Schema, error) {
	summarySchemaOnce.Do(func() {
		summarySchema, summarySchemaErr = CompileSchema("summary.json", BuildSummaryJSONSchema())
	})
	return summarySchema, summarySchemaErr
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	s, err := CompileSchema("schema.json", schemaMap)
	if err != nil {
		return err
	}
	return s.Validate(data)
}
