package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

type call struct {
	tool      string
	arguments map[string]interface{}
}

// parseCall parses name or name=<json object>.
func parseCall(value string) (*call, error) {
	name, raw, hasArgs := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("invalid call %q: tool name was empty", value)
	}
	ret := &call{tool: name}
	if !hasArgs {
		return ret, nil
	}
	ret.arguments = map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &ret.arguments); err != nil {
		return nil, fmt.Errorf("invalid call %q arguments: %w", value, err)
	}
	return ret, nil
}
