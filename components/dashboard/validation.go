package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DatasetValidator validates row sets against the tables that render them.
type DatasetValidator interface {
	Validate(schema TableSchema, rows []Row) error
}

// JSONSchemaValidator derives a JSON schema from each table's columns and
// validates row values against it.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures every row satisfies the table's column kinds.
func (v *JSONSchemaValidator) Validate(schema TableSchema, rows []Row) error {
	compiled, err := v.schemaFor(schema)
	if err != nil {
		return err
	}
	for _, row := range rows {
		payload, err := normalizePayload(row.Values)
		if err != nil {
			return fmt.Errorf("dashboard: normalize row %s for %s: %w", row.ID, schema.ID, err)
		}
		if err := compiled.Validate(payload); err != nil {
			return fmt.Errorf("dashboard: row %s of %s failed validation: %w", row.ID, schema.ID, err)
		}
	}
	return nil
}

func normalizePayload(values map[string]any) (map[string]any, error) {
	payload := map[string]any{}
	if len(values) == 0 {
		return payload, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// TableJSONSchema describes a table's rows as a JSON schema document.
// Missing values are allowed; present values must match the column kind.
func TableJSONSchema(schema TableSchema) map[string]any {
	properties := make(map[string]any, len(schema.Columns))
	for _, col := range schema.Columns {
		switch col.Kind {
		case ColumnNumber:
			properties[col.Key] = map[string]any{"type": []string{"number", "null"}}
		case ColumnStatus:
			prop := map[string]any{"type": []string{"string", "null"}}
			if len(col.Options) > 0 {
				enum := make([]any, 0, len(col.Options)+1)
				for _, opt := range col.Options {
					enum = append(enum, opt)
				}
				prop["enum"] = append(enum, nil)
			}
			properties[col.Key] = prop
		default:
			properties[col.Key] = map[string]any{"type": []string{"string", "null"}}
		}
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
	}
}

func (v *JSONSchemaValidator) schemaFor(schema TableSchema) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.compiled[schema.ID]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	data, err := json.Marshal(TableJSONSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", schema.ID, err)
	}
	compiler := jsonschema.NewCompiler()
	name := schema.ID + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", schema.ID, err)
	}
	compiled, err = compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", schema.ID, err)
	}
	v.mu.Lock()
	v.compiled[schema.ID] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopDatasetValidator struct{}

func (noopDatasetValidator) Validate(TableSchema, []Row) error { return nil }
