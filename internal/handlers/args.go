package handlers

import "devgateway/internal/gwerr"

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", gwerr.New(gwerr.InvalidInput, "missing required argument: "+key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", gwerr.New(gwerr.InvalidInput, "argument must be a non-empty string: "+key)
	}
	return s, nil
}

// optionalString extracts an optional string argument, defaulting to "".
func optionalString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// optionalBool extracts an optional bool argument, defaulting to false.
func optionalBool(args map[string]any, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// optionalInt extracts an optional numeric argument. JSON numbers decode
// to float64 through encoding/json's default map[string]any handling.
func optionalInt(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}
