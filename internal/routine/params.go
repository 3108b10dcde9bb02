package routine

import (
	"fmt"

	"github.com/hammamikhairi/brewctl/internal/domain"
)

// floatParam extracts a required numeric parameter. JSON numbers decode
// as float64; int is accepted for plans built in code.
func floatParam(p domain.Params, key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("parameter %q is %T, want number", key, v)
	}
}

// stringParam extracts a required string parameter.
func stringParam(p domain.Params, key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q is %T, want string", key, v)
	}
	return s, nil
}

// errBadType reports an invalid maintain type parameter.
func errBadType(typ string) error {
	return fmt.Errorf(`parameter "type" must be "heat" or "cool", got %q`, typ)
}

// clone copies a parameter map so routines can derive parameters
// without mutating the plan's own map.
func clone(p domain.Params) domain.Params {
	out := make(domain.Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}
