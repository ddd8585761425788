package schema

import "encoding/json"

// FunctionDescriptor is the function part of a tool descriptor.
type FunctionDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolDescriptor describes one callable function in the OpenAI
// function-calling wire format:
//
//	{"type":"function","function":{"name":…,"description":…,"parameters":{…}}}
type ToolDescriptor struct {
	Type     string             `json:"type"`
	Function FunctionDescriptor `json:"function"`
}

// NewToolDescriptor builds a function descriptor. A nil parameters schema is
// replaced by an empty object schema.
func NewToolDescriptor(name, description string, parameters json.RawMessage) ToolDescriptor {
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return ToolDescriptor{
		Type: "function",
		Function: FunctionDescriptor{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
