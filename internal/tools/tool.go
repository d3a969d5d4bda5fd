// Package tools defines the tool catalog exposed to the model and the
// handlers that implement each tool against the record store.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/cortexai/roster/internal/store"
)

// Name is the stable identifier of a tool. A name is never reused for a
// different argument contract.
type Name string

const (
	CreatePerson Name = "create_person"
	UpdatePerson Name = "update_person"
	LookupPerson Name = "lookup_person"
	MergePersons Name = "merge_persons"
)

// Parameter describes one named argument of a tool.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Tool represents a callable function the LLM can invoke.
// InputSchema and Parameters are both derived from the handler's argument
// struct, so the schema the model sees always matches what Execute accepts.
type Tool struct {
	Name        Name
	Description string
	Parameters  []Parameter
	InputSchema map[string]interface{}
	Execute     func(ctx context.Context, st *store.Context, args json.RawMessage) (*Result, error)
}

// Handler implements a tool for a decoded argument struct.
type Handler[A any] func(ctx context.Context, st *store.Context, args A) (*Result, error)

// ArgumentError reports an argument payload that does not satisfy a tool's
// schema: a missing required argument, an unknown argument or a wrong type.
type ArgumentError struct {
	Tool     Name
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e.Argument == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: argument %q: %s", e.Tool, e.Argument, e.Reason)
}

var reflector = jsonschema.Reflector{
	Anonymous:                 true,
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: false,
}

// New builds a Tool whose schema is generated from A and whose Execute
// strictly decodes the payload into A before calling h.
func New[A any](name Name, description string, h Handler[A]) Tool {
	schema, params := GenerateSchema[A]()
	required := make([]string, 0, len(params))
	for _, p := range params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  params,
		InputSchema: schema,
		Execute: func(ctx context.Context, st *store.Context, raw json.RawMessage) (*Result, error) {
			args, err := decodeArgs[A](name, required, raw)
			if err != nil {
				return nil, err
			}
			return h(ctx, st, args)
		},
	}
}

// GenerateSchema derives a JSON Schema object and the flat parameter list
// from the json and jsonschema_description tags of T. Fields without
// omitempty are required.
func GenerateSchema[T any]() (map[string]interface{}, []Parameter) {
	var v T
	s := reflector.Reflect(v)

	var params []Parameter
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			params = append(params, Parameter{
				Name:        pair.Key,
				Type:        pair.Value.Type,
				Description: pair.Value.Description,
				Required:    slices.Contains(s.Required, pair.Key),
			})
		}
	}

	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %T: %v", v, err))
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(b, &schema); err != nil {
		panic(fmt.Sprintf("tools: decode schema for %T: %v", v, err))
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	return schema, params
}

func decodeArgs[A any](tool Name, required []string, raw json.RawMessage) (A, error) {
	var args A

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return args, &ArgumentError{Tool: tool, Reason: "arguments must be a JSON object"}
	}
	for _, name := range required {
		v, ok := fields[name]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return args, &ArgumentError{Tool: tool, Argument: name, Reason: "required argument is missing"}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return args, &ArgumentError{
				Tool:     tool,
				Argument: typeErr.Field,
				Reason:   fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		// encoding/json has no typed error for unknown fields.
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return args, &ArgumentError{
				Tool:     tool,
				Argument: strings.Trim(name, `"`),
				Reason:   "unknown argument",
			}
		}
		return args, &ArgumentError{Tool: tool, Reason: err.Error()}
	}
	return args, nil
}

func requireStore(st *store.Context, tool Name) error {
	if st == nil {
		return fmt.Errorf("%s: %w", tool, store.ErrNoStore)
	}
	return nil
}
