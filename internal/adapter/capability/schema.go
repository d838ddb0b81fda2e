package capability

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"aitools/internal/domain"
)

// PayloadValidator checks structured tool payloads against the tool's
// InputSchema before they are decoded.
type PayloadValidator struct {
	tool   domain.ToolID
	schema *jsonschema.Schema
}

// NewPayloadValidator compiles the schema of d. Tools without a schema take
// plain text and yield a validator that accepts anything.
func NewPayloadValidator(d domain.ToolDescriptor) (*PayloadValidator, error) {
	v := &PayloadValidator{tool: d.ID}
	if len(d.InputSchema) == 0 {
		return v, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(d.InputSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource for %q: %w", d.ID, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", d.ID, err)
	}
	v.schema = compiled
	return v, nil
}

// Structured reports whether the tool takes a JSON payload.
func (p *PayloadValidator) Structured() bool { return p.schema != nil }

// Validate checks raw against the schema.
func (p *PayloadValidator) Validate(raw []byte) error {
	if p.schema == nil {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.NewDomainError("PayloadValidator.Validate", domain.ErrInvalidInput, fmt.Sprintf("%s: invalid JSON: %v", p.tool, err))
	}
	if err := p.schema.Validate(v); err != nil {
		return domain.NewDomainError("PayloadValidator.Validate", domain.ErrInvalidInput, fmt.Sprintf("%s: schema validation failed: %v", p.tool, err))
	}
	return nil
}

// Decode validates raw and unmarshals it into T.
func Decode[T any](p *PayloadValidator, raw []byte) (T, error) {
	var out T
	if err := p.Validate(raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, domain.NewDomainError("capability.Decode", domain.ErrInvalidInput, err.Error())
	}
	return out, nil
}
