package config

import (
	"fmt"
	"regexp"
	"time"
)

// Config wraps a map[string]any for type-safe value extraction.
// All accessor methods return default values if the key is missing
// or the value cannot be converted to the requested type.
type Config struct {
	data map[string]any
	vars map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// WithVars returns a copy of c that expands ${name} references in string
// values against vars.
func (c Config) WithVars(vars map[string]any) Config {
	c.vars = vars
	return c
}

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.-]*)\}`)

// Expand replaces ${name} references in s with values from vars.
// Unknown references are left unchanged.
func Expand(s string, vars map[string]any) string {
	if len(vars) == 0 {
		return s
	}
	return refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		if v, ok := vars[name]; ok {
			return fmt.Sprint(v)
		}
		return ref
	})
}

// get returns the value for key with references resolved.
func (c Config) get(key string) (any, bool) {
	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	s, isString := v.(string)
	if !isString || len(c.vars) == 0 {
		return v, true
	}
	if m := refPattern.FindStringSubmatchIndex(s); m != nil && m[0] == 0 && m[1] == len(s) {
		if val, found := c.vars[s[m[2]:m[3]]]; found {
			return val, true
		}
	}
	return Expand(s, c.vars), true
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int: interpreted as seconds
//   - int64: interpreted as seconds
//   - float64: interpreted as seconds
//   - time.Duration: used directly
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case time.Duration:
		return val
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int, only if it has no fractional part
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Float returns the float64 value for key, or defaultVal if missing or not convertible.
func (c Config) Float(key string, defaultVal float64) float64 {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// StringSlice returns the string slice for key, or defaultVal if missing or not convertible.
// Elements are expanded like String values.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = Expand(s, c.vars)
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			out = append(out, Expand(s, c.vars))
		}
		return out
	}
	return defaultVal
}

// Any returns the resolved value for key, or defaultVal if missing.
func (c Config) Any(key string, defaultVal any) any {
	v, ok := c.get(key)
	if !ok {
		return defaultVal
	}
	return v
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map, without references resolved.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
