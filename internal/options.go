package internal

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Options is an opaque option map passed through to the daemon. Keys are
// matched case-insensitively against the fields of the moby option structs
// they are decoded into.
type Options map[string]any

// Decode copies the options onto the fields of target, which must be a pointer
// to a struct. Unknown keys are ignored and scalar values are weakly converted
// (e.g. "true" to bool) so that hand-written task files decode cleanly.
func (o Options) Decode(target any) error {
	if len(o) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return fmt.Errorf("failed to create option decoder for %T: %w", target, err)
	}

	if err := decoder.Decode(map[string]any(o)); err != nil {
		return fmt.Errorf("failed to decode options into %T: %w\nCheck the option names and value types in your task file", target, err)
	}

	return nil
}

// Lookup returns the value stored under key, matching case-insensitively.
func (o Options) Lookup(key string) (any, bool) {
	if value, ok := o[key]; ok {
		return value, true
	}
	for k, value := range o {
		if strings.EqualFold(k, key) {
			return value, true
		}
	}
	return nil, false
}

// String returns the value under key formatted as a string, or "" if absent.
func (o Options) String(key string) string {
	value, ok := o.Lookup(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Bool reports whether the value under key is true. String values "true",
// "1" and "yes" are accepted.
func (o Options) Bool(key string) bool {
	value, ok := o.Lookup(key)
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		}
	case int:
		return v != 0
	}
	return false
}

// Sub returns the nested option map stored under key, or nil.
func (o Options) Sub(key string) Options {
	value, ok := o.Lookup(key)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case Options:
		return v
	case map[string]any:
		return Options(v)
	}
	return nil
}

// Merge returns a new Options holding o overlaid with override.
func (o Options) Merge(override Options) Options {
	merged := make(Options, len(o)+len(override))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
