package common

// StringArg extracts a string argument by key, returning fallback when the
// key is absent or not a string.
func StringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// IntArg extracts an integer argument by key. JSON numbers decode as
// float64, so both representations are accepted.
func IntArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// BoolArg extracts a boolean argument by key, returning fallback when the
// key is absent or not a boolean.
func BoolArg(args map[string]interface{}, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

// ClampInt constrains v to the inclusive range [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
