package importcfg

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// readDocument reads and decodes a JSON object from fs.
func readDocument(fs afero.Fs, path string) (map[string]any, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrSchema)
	}
	return obj, nil
}

// requireKeys checks that node is an object holding all keys.
func requireKeys(node any, keys ...string) (map[string]any, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrSchema, node)
	}
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrSchema, key)
		}
	}
	return obj, nil
}

func objectAt(obj map[string]any, key string) (map[string]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchema, key)
	}
	child, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", ErrSchema, key)
	}
	return child, nil
}

func listAt(obj map[string]any, key string) ([]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchema, key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an array", ErrSchema, key)
	}
	return list, nil
}

func stringAt(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSchema, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", ErrSchema, key)
	}
	return s, nil
}

// numberAt reads a number decoded from JSON or set from Go code.
func numberAt(obj map[string]any, key string) (float64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSchema, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number: %w", ErrSchema, key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %q is not a number", ErrSchema, key)
	}
}
