package viewsheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
)

var ErrUnsupportedExpression = errors.New("unsupported expression")

// Variables resolves `$(name)` references and bare `=name` expressions from
// a fixed map. Other script expressions are not evaluated.
type Variables map[string]any

func (v Variables) Evaluate(_ context.Context, expr string) (any, error) {
	var name string
	switch {
	case dynamic.IsVariable(expr):
		name = dynamic.VariableName(expr)
	case dynamic.IsExpression(expr):
		name = strings.TrimSpace(expr[1:])
		if !isIdent(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
	}

	val, ok := v[name]
	if !ok {
		return nil, fmt.Errorf("variable %q is not defined", name)
	}
	return val, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
