package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	"github.com/viant/mcp-protocol/schema"
)

const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	typeNull    = "null"
)

type (
	// Tool is a remotely invokable capability advertised by tools/list.
	Tool struct {
		Name        string       `json:"name"`
		Description string       `json:"description,omitempty"`
		InputSchema *InputSchema `json:"inputSchema,omitempty"`
	}

	// InputSchema describes the parameters a tool accepts.
	InputSchema struct {
		Type       string              `json:"type,omitempty"`
		Properties map[string]Property `json:"properties,omitempty"`
		Required   []string            `json:"required,omitempty"`
	}

	// Property describes a single parameter.
	Property struct {
		Type        string    `json:"type,omitempty"`
		Description string    `json:"description,omitempty"`
		Format      string    `json:"format,omitempty"`
		Items       *Property `json:"items,omitempty"`
		Required    bool      `json:"required,omitempty"`
	}

	// Parameter is a flattened, name-ordered view of one schema property.
	Parameter struct {
		Name     string
		Type     string
		Required bool
	}
)

var (
	errToolName = errors.New("tool name is not a string")
	errProperty = errors.New("property is not an object")
)

// UnmarshalJSON requires a string name; a description or input schema of an
// unexpected shape is dropped instead of failing the tool.
func (t *Tool) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, ok := asString(raw.Name)
	if !ok {
		return errToolName
	}
	*t = Tool{Name: name}
	t.Description, _ = asString(raw.Description)
	if isObject(raw.InputSchema) {
		inputSchema := &InputSchema{}
		if err := json.Unmarshal(raw.InputSchema, inputSchema); err == nil {
			t.InputSchema = inputSchema
		}
	}
	return nil
}

// UnmarshalJSON decodes the schema leniently: properties that are not objects
// and non-string required entries are skipped.
func (s *InputSchema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = InputSchema{Type: asType(raw["type"])}
	var properties map[string]json.RawMessage
	if isObject(raw["properties"]) && json.Unmarshal(raw["properties"], &properties) == nil && len(properties) > 0 {
		s.Properties = make(map[string]Property, len(properties))
		for name, value := range properties {
			var prop Property
			if err := json.Unmarshal(value, &prop); err != nil {
				continue
			}
			s.Properties[name] = prop
		}
	}
	var required []json.RawMessage
	if isArray(raw["required"]) && json.Unmarshal(raw["required"], &required) == nil {
		for _, value := range required {
			if name, ok := asString(value); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return nil
}

// UnmarshalJSON accepts both "type":"string" and JSON-schema type unions such as
// "type":["string","null"], in which case the first non-null entry is kept.
// Fields of an unexpected shape are left unset.
func (p *Property) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return errProperty
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Property{Type: asType(raw["type"])}
	p.Description, _ = asString(raw["description"])
	p.Format, _ = asString(raw["format"])
	if items := raw["items"]; isObject(items) {
		var item Property
		if err := json.Unmarshal(items, &item); err == nil {
			p.Items = &item
		}
	}
	if required := raw["required"]; len(required) > 0 {
		_ = json.Unmarshal(required, &p.Required)
	}
	return nil
}

// Parameters returns schema properties ordered by name.
func (s *InputSchema) Parameters() []Parameter {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	result := make([]Parameter, 0, len(s.Properties))
	for name, prop := range s.Properties {
		result = append(result, Parameter{Name: name, Type: prop.Type, Required: required[name] || prop.Required})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Parameters returns the tool input parameters ordered by name.
func (t *Tool) Parameters() []Parameter {
	return t.InputSchema.Parameters()
}

// DescriptionOrDefault returns the tool description or a placeholder.
func (t *Tool) DescriptionOrDefault() string {
	if t.Description == "" {
		return "No description provided."
	}
	return t.Description
}

// DecodeListToolsResult decodes a tools/list result, it returns false when the
// payload is not an object with a tools array. Entries without a string name
// are skipped; every other entry yields a tool.
func DecodeListToolsResult(data []byte) ([]Tool, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var result struct {
		Tools json.RawMessage `json:"tools"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	var entries []json.RawMessage
	if len(result.Tools) == 0 || !isArray(result.Tools) {
		return nil, false
	}
	if err := json.Unmarshal(result.Tools, &entries); err != nil {
		return nil, false
	}
	tools := make([]Tool, 0, len(entries))
	for _, entry := range entries {
		var tool Tool
		if err := json.Unmarshal(entry, &tool); err != nil {
			continue
		}
		tools = append(tools, tool)
	}
	return tools, true
}

// NewCallToolRequestParams creates tools/call parameters.
func NewCallToolRequestParams(name string, arguments map[string]interface{}) *schema.CallToolRequestParams {
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return &schema.CallToolRequestParams{Name: name, Arguments: arguments}
}

func asString(data json.RawMessage) (string, bool) {
	var ret string
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	if err := json.Unmarshal(data, &ret); err != nil {
		return "", false
	}
	return ret, true
}

// asType reads a JSON-schema type, the first non-null member of a union wins.
func asType(data json.RawMessage) string {
	if ret, ok := asString(data); ok {
		return ret
	}
	var union []json.RawMessage
	if !isArray(data) || json.Unmarshal(data, &union) != nil {
		return ""
	}
	for _, candidate := range union {
		if value, ok := asString(candidate); ok && value != typeNull {
			return value
		}
	}
	return ""
}

func isObject(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func isArray(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}
