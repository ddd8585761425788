package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// InvokeFunc calls one tool on instance with the JSON-encoded arguments the
// model produced.
type InvokeFunc func(ctx context.Context, instance any, args json.RawMessage) (any, error)

// Tool is one entry of a capability's static tool table: the method name,
// what the model is told about it, and how to call it.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema of the argument object
	Invoke      InvokeFunc
}

// Method builds a table entry from a method expression such as
// (*TodoStore).AddTodo. The parameter schema is reflected from A, which must
// be a struct; arguments are decoded into A and validated against its
// `validate` tags before fn runs.
func Method[T, A, R any](name, description string, fn func(T, context.Context, A) (R, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  parametersFor[A](),
		Invoke: func(ctx context.Context, instance any, raw json.RawMessage) (any, error) {
			recv, ok := instance.(T)
			if !ok {
				return nil, fmt.Errorf("%s is not a method of %T", name, instance)
			}
			args, err := decodeArgs[A](raw)
			if err != nil {
				return nil, err
			}
			return fn(recv, ctx, args)
		},
	}
}

// Action is Method for tools that return nothing.
func Action[T, A any](name, description string, fn func(T, context.Context, A) error) Tool {
	return Method(name, description, func(recv T, ctx context.Context, args A) (any, error) {
		return nil, fn(recv, ctx, args)
	})
}

// NoArgs is the argument type of tools that take no parameters.
type NoArgs struct{}

var reflector = jsonschema.Reflector{
	ExpandedStruct: true,
	DoNotReference: true,
}

// parametersFor reflects the JSON Schema of A into the shape function calling
// expects: a bare object schema without $schema/$id.
func parametersFor[A any]() json.RawMessage {
	t := reflect.TypeOf((*A)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("capability: tool arguments must be a struct, got %s", t))
	}

	raw, err := json.Marshal(reflector.ReflectFromType(t))
	if err != nil {
		panic(fmt.Sprintf("capability: reflect schema for %s: %v", t, err))
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		panic(fmt.Sprintf("capability: decode schema for %s: %v", t, err))
	}
	delete(obj, "$schema")
	delete(obj, "$id")
	obj["type"] = "object"
	if _, ok := obj["properties"]; !ok {
		obj["properties"] = map[string]any{}
	}

	out, _ := json.Marshal(obj)
	return out
}

func decodeArgs[A any](raw json.RawMessage) (A, error) {
	var args A
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, &ArgumentError{Err: err}
	}
	if err := validateArgs(args); err != nil {
		return args, err
	}
	return args, nil
}
