package session

import "github.com/viant/mcpinspect/schema"

// ArgumentFiller builds tools/call arguments from a tool input schema.
type ArgumentFiller func(inputSchema *schema.InputSchema) map[string]interface{}

const placeholderString = "test string"

// PlaceholderArguments supplies a type-appropriate placeholder for every declared
// string, number and boolean parameter; parameters of any other type stay unset.
func PlaceholderArguments(inputSchema *schema.InputSchema) map[string]interface{} {
	arguments := map[string]interface{}{}
	if inputSchema == nil {
		return arguments
	}
	for name, prop := range inputSchema.Properties {
		switch prop.Type {
		case schema.TypeString:
			arguments[name] = placeholderString
		case schema.TypeNumber:
			arguments[name] = 1
		case schema.TypeBoolean:
			arguments[name] = true
		}
	}
	return arguments
}
