// Package dynamic implements design-time / runtime property pairs.
//
// A Value keeps the user-authored design value (a literal, a `=script`
// expression or a `$(variable)` reference) next to a lazily resolved, typed
// runtime value. The runtime slot is a cache: ResetRuntime drops it and the
// next read resolves the design value again.
package dynamic

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// Evaluator resolves script expressions and variable references.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string) (any, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, expr string) (any, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, expr string) (any, error) {
	return f(ctx, expr)
}

// IsExpression reports whether s is a script expression (`=...`).
func IsExpression(s string) bool {
	return strings.HasPrefix(s, "=") && len(s) > 1
}

// IsVariable reports whether s is a variable reference (`$(name)`).
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "$(") && strings.HasSuffix(s, ")") && len(s) > 3
}

// VariableName returns the referenced name of a `$(name)` design value.
func VariableName(s string) string {
	if !IsVariable(s) {
		return ""
	}
	return strings.TrimSpace(s[2 : len(s)-1])
}

// Value is a dual-valued property of type T.
type Value[T any] struct {
	design    string
	hasDesign bool

	runtime  T
	resolved bool

	codec Codec[T]
	def   T
	ev    Evaluator
}

// New creates a value with the given design literal and runtime default.
func New[T any](design string, def T, codec Codec[T]) *Value[T] {
	return &Value[T]{design: design, hasDesign: true, def: def, codec: codec}
}

// NewNull creates a value whose design value is null.
func NewNull[T any](def T, codec Codec[T]) *Value[T] {
	return &Value[T]{def: def, codec: codec}
}

func (v *Value[T]) DesignValue() string {
	return v.design
}

// IsNull reports whether no design value is set.
func (v *Value[T]) IsNull() bool {
	return !v.hasDesign
}

// DesignPtr returns the design value or nil when null.
func (v *Value[T]) DesignPtr() *string {
	if !v.hasDesign {
		return nil
	}
	s := v.design
	return &s
}

func (v *Value[T]) SetDesignValue(s string) {
	v.design = s
	v.hasDesign = true
}

// SetDesignPtr sets the design value, nil meaning null.
func (v *Value[T]) SetDesignPtr(s *string) {
	if s == nil {
		v.ClearDesignValue()
		return
	}
	v.SetDesignValue(*s)
}

func (v *Value[T]) ClearDesignValue() {
	v.design = ""
	v.hasDesign = false
}

// SetDesignTyped formats t with the codec and stores it as the design value.
func (v *Value[T]) SetDesignTyped(t T) {
	v.SetDesignValue(v.codec.Format(t))
}

// Bind attaches the evaluator used to resolve expressions lazily.
func (v *Value[T]) Bind(ev Evaluator) {
	v.ev = ev
}

func (v *Value[T]) Default() T {
	return v.def
}

// IsDynamic reports whether the design value needs an evaluator.
func (v *Value[T]) IsDynamic() bool {
	return v.hasDesign && (IsExpression(v.design) || IsVariable(v.design))
}

// RuntimeValue returns the cached runtime value, resolving and caching the
// design value first when nothing is cached. When resolution yields nothing
// the type default is returned if useDefault is set, the zero value otherwise.
func (v *Value[T]) RuntimeValue(useDefault bool) T {
	if !v.resolved {
		v.resolve(context.Background())
	}
	if v.resolved {
		return v.runtime
	}
	if useDefault {
		return v.def
	}
	var zero T
	return zero
}

// Resolved returns the cached runtime value without resolving.
func (v *Value[T]) Resolved() (T, bool) {
	return v.runtime, v.resolved
}

func (v *Value[T]) SetRuntimeValue(t T) {
	v.runtime = t
	v.resolved = true
}

// ResetRuntime drops the cached runtime value; the design value is kept.
func (v *Value[T]) ResetRuntime() {
	var zero T
	v.runtime = zero
	v.resolved = false
}

// Resolve evaluates the design value with ev (or the bound evaluator) and
// caches the result.
func (v *Value[T]) Resolve(ctx context.Context, ev Evaluator) T {
	if ev != nil {
		v.ev = ev
	}
	v.resolve(ctx)
	if v.resolved {
		return v.runtime
	}
	return v.def
}

func (v *Value[T]) resolve(ctx context.Context) {
	if !v.hasDesign {
		return
	}

	if v.IsDynamic() {
		if v.ev == nil {
			return
		}
		raw, err := v.ev.Evaluate(ctx, v.design)
		if err != nil {
			log.Debug().Err(err).Str("expr", v.design).Msg("dynamic value evaluation failed")
			return
		}
		if raw == nil {
			return
		}
		t, err := v.codec.Convert(raw)
		if err != nil {
			log.Debug().Err(err).Str("expr", v.design).Msg("dynamic value conversion failed, using default")
			v.SetRuntimeValue(v.def)
			return
		}
		v.SetRuntimeValue(t)
		return
	}

	t, err := v.codec.Parse(v.design)
	if err != nil {
		log.Debug().Err(err).Str("value", v.design).Msg("dynamic value parse failed, using default")
		v.SetRuntimeValue(v.def)
		return
	}
	v.SetRuntimeValue(t)
}

// Equal compares design values only.
func (v *Value[T]) Equal(o *Value[T]) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.hasDesign == o.hasDesign && v.design == o.design
}

// Hash is consistent with Equal.
func (v *Value[T]) Hash() uint64 {
	if v == nil || !v.hasDesign {
		return 0
	}
	return xxhash.Sum64String(v.design)
}

// Clone copies both slots; the clone shares no mutable state with v.
func (v *Value[T]) Clone() *Value[T] {
	if v == nil {
		return nil
	}
	c := *v
	if v.resolved {
		c.runtime = v.codec.Copy(v.runtime)
	}
	return &c
}

// CopyFrom copies the design value of o when it differs, keeping the runtime
// cache only when nothing changed. It reports whether a change happened.
func (v *Value[T]) CopyFrom(o *Value[T]) bool {
	if v.Equal(o) {
		return false
	}
	v.design = o.design
	v.hasDesign = o.hasDesign
	v.ResetRuntime()
	return true
}

func (v *Value[T]) String() string {
	if !v.hasDesign {
		return "<null>"
	}
	return v.design
}

// Property is the type-independent view of a Value, used to walk the
// dynamic properties of an object.
type Property interface {
	DesignPtr() *string
	SetDesignPtr(s *string)
	IsDynamic() bool
	ResetRuntime()
	Refresh(ctx context.Context, ev Evaluator)
}

// Refresh drops the cached runtime value and resolves it again.
func (v *Value[T]) Refresh(ctx context.Context, ev Evaluator) {
	v.ResetRuntime()
	v.Resolve(ctx, ev)
}
