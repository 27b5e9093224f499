package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// propertyForType returns a Property for a given reflect.Type.
func propertyForType(t reflect.Type) Property {
	// Special handling for time.Time: treat as ISO 8601 string.
	if t == reflect.TypeOf(time.Time{}) {
		return Property{Type: TypeString, Format: "date-time"}
	}
	if t.Kind() == reflect.Ptr {
		return propertyForType(t.Elem())
	}
	switch t.Kind() {
	case reflect.Bool:
		return Property{Type: TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Property{Type: TypeInteger}
	case reflect.Float32, reflect.Float64:
		return Property{Type: TypeNumber}
	case reflect.String:
		return Property{Type: TypeString}
	case reflect.Slice, reflect.Array:
		items := propertyForType(t.Elem())
		return Property{Type: TypeArray, Items: &items}
	case reflect.Map, reflect.Struct:
		return Property{Type: TypeObject}
	default:
		return Property{Type: TypeString}
	}
}

// structToProperties converts a struct type into schema properties and required fields.
func structToProperties(t reflect.Type) (map[string]Property, []string) {
	properties := make(map[string]Property)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, ignore := jsonTag(field)
		if ignore {
			continue
		}
		prop := propertyForType(field.Type)
		if description := field.Tag.Get("description"); description != "" {
			prop.Description = description
		}
		properties[name] = prop
		if field.Type.Kind() != reflect.Ptr && !omitEmpty {
			required = append(required, name)
		}
	}
	return properties, required
}

func jsonTag(field reflect.StructField) (name string, omitEmpty bool, ignore bool) {
	name = field.Name
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, option := range parts[1:] {
		if option == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// Load populates the schema from a struct (or pointer to struct) value.
func (s *InputSchema) Load(v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("expected a struct type, got nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("expected a struct type, got %s", t.Kind())
	}
	properties, required := structToProperties(t)
	s.Properties = properties
	s.Required = required
	s.Type = TypeObject
	return nil
}
