package loader

import (
	"fmt"

	"dario.cat/mergo"
)

// combine returns the value of a variable after a higher source defined it.
// With deep set, mappings are merged recursively and everything else,
// lists included, is replaced.
func combine(current, next any, deep bool) (any, error) {
	if !deep {
		return next, nil
	}

	dst, dstOK := stringKeys(current).(map[string]any)
	src, srcOK := stringKeys(next).(map[string]any)
	if !dstOK || !srcOK {
		return next, nil
	}

	// mergo writes into nested maps of dst, so neither side may be shared.
	merged := deepCopy(dst).(map[string]any)
	if err := mergo.Merge(&merged, deepCopy(src).(map[string]any), mergo.WithOverride); err != nil {
		return nil, err
	}
	return merged, nil
}

func isMapping(v any) bool {
	_, ok := stringKeys(v).(map[string]any)
	return ok
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// stringKeys converts mappings with non-string keys, which yaml.v3 decodes
// as map[any]any (e.g. `ports: {80: http}`), into map[string]any so they
// merge and render like any other mapping.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}
