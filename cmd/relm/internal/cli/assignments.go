package cli

import (
	"fmt"
	"strings"
)

// ParseAssignments parses repeated key=value flags. A later key overrides an earlier one.
func ParseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAssignment, v)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// Settings converts assignments into strategy settings.
func Settings(values []string) (map[string]interface{}, error) {
	pairs, err := ParseAssignments(values)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(pairs))
	for k, v := range pairs {
		out[k] = v
	}
	return out, nil
}
