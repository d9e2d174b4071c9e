// Package info holds the persisted, runtime-mutable configuration of
// viewsheet assemblies and the copy/diff protocol that turns a new
// configuration into a minimal change hint.
package info

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/de-tools/vsstate/pkg/viewsheet/dynamic"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

var ErrKindMismatch = errors.New("assembly kind mismatch")

// AssemblyInfo is the configuration of one assembly. The set of
// implementations is closed; use New to create one by Kind.
type AssemblyInfo interface {
	Kind() Kind
	Base() *BaseInfo

	// CopyViewInfo copies rendering attributes from other. Container child
	// lists are only copied when deep is set.
	CopyViewInfo(other AssemblyInfo, deep bool) bool
	// CopyInputDataInfo copies query input attributes and returns hint with
	// the resulting flags added.
	CopyInputDataInfo(other AssemblyInfo, hint ChangeHint) ChangeHint
	// CopyOutputDataInfo copies the data the assembly exposes to others.
	CopyOutputDataInfo(other AssemblyInfo) bool

	// ShallowCopy shares nested objects with the receiver.
	ShallowCopy() AssemblyInfo
	// DeepCopy returns nil when a payload value cannot be cloned.
	DeepCopy() AssemblyInfo

	ResetRuntime()
	Resolve(ctx context.Context, ev dynamic.Evaluator)

	writeContents(el *xmlutil.Element)
	parseContents(el *xmlutil.Element) error
}

// Lookup resolves assemblies by name, e.g. a viewsheet registry.
type Lookup interface {
	Assembly(name string) (AssemblyInfo, bool)
}

// BaseInfo holds the attributes shared by every assembly.
type BaseInfo struct {
	name string

	Position    Point
	Size        Size
	ZIndex      int
	Format      *Format
	Visible     *dynamic.Value[bool]
	Enabled     *dynamic.Value[bool]
	Description string
	Script      string
	// ScriptEnabled turns the onRefresh script on.
	ScriptEnabled bool
}

func newBaseInfo(size Size) BaseInfo {
	return BaseInfo{
		Size:          size,
		Format:        NewFormat(),
		Visible:       dynamic.BoolOf(true),
		Enabled:       dynamic.BoolOf(true),
		ScriptEnabled: true,
	}
}

func (b *BaseInfo) Base() *BaseInfo {
	return b
}

func (b *BaseInfo) Name() string {
	return b.name
}

func (b *BaseInfo) SetName(name string) {
	b.name = name
}

func (b *BaseInfo) IsVisible() bool {
	return b.Visible.RuntimeValue(true)
}

func (b *BaseInfo) IsEnabled() bool {
	return b.Enabled.RuntimeValue(true)
}

func (b *BaseInfo) props() properties {
	return append(properties{b.Visible, b.Enabled}, b.Format.props()...)
}

func (b *BaseInfo) copyViewInfo(o *BaseInfo) bool {
	changed := copyField(&b.Position, o.Position)
	changed = copyField(&b.Size, o.Size) || changed
	changed = copyField(&b.ZIndex, o.ZIndex) || changed
	changed = copyFormat(&b.Format, o.Format) || changed
	changed = copyDynamic(&b.Visible, o.Visible) || changed
	changed = copyDynamic(&b.Enabled, o.Enabled) || changed
	changed = copyField(&b.Description, o.Description) || changed
	changed = copyField(&b.Script, o.Script) || changed
	changed = copyField(&b.ScriptEnabled, o.ScriptEnabled) || changed
	return changed
}

func (b *BaseInfo) copyInputDataInfo(_ *BaseInfo, hint ChangeHint) ChangeHint {
	return hint
}

func (b *BaseInfo) copyOutputDataInfo(_ *BaseInfo) bool {
	return false
}

func (b *BaseInfo) deepCopy() BaseInfo {
	c := *b
	c.Format = b.Format.Clone()
	c.Visible = b.Visible.Clone()
	c.Enabled = b.Enabled.Clone()
	return c
}

func (b *BaseInfo) writeBase(el *xmlutil.Element) {
	el.SetAttr("name", b.name).SetIntAttr("zIndex", b.ZIndex)
	el.Append(
		pointElement("pixelOffset", b.Position),
		sizeElement("pixelSize", b.Size),
		b.Format.WriteXML("format"),
		dynamicElement("visible", b.Visible),
		dynamicElement("enabled", b.Enabled),
		xmlutil.TextElement("description", b.Description),
	)
	script := xmlutil.TextElement("script", b.Script)
	script.SetBoolAttr("enabled", b.ScriptEnabled)
	el.Append(script)
}

func (b *BaseInfo) parseBase(el *xmlutil.Element) {
	if name, ok := el.Attr("name"); ok {
		b.name = name
	}
	b.ZIndex = el.IntAttr("zIndex", b.ZIndex)
	parsePoint(el, "pixelOffset", &b.Position)
	parseSize(el, "pixelSize", &b.Size)
	if f := el.Child("format"); f != nil {
		b.Format.ParseXML(f)
	}
	parseDynamic(el, "visible", b.Visible)
	parseDynamic(el, "enabled", b.Enabled)
	if s, ok := el.ChildText("description"); ok {
		b.Description = s
	}
	if s := el.Child("script"); s != nil {
		b.Script = s.Text
		b.ScriptEnabled = s.BoolAttr("enabled", true)
	}
}

// peer casts other to the receiver's concrete type. A mismatch is logged
// and the copy becomes a no-op.
func peer[T AssemblyInfo](self, other AssemblyInfo) (T, bool) {
	o, ok := other.(T)
	if !ok {
		log.Warn().
			Str("assembly", self.Base().Name()).
			Stringer("kind", self.Kind()).
			Msg("ignoring copy from a different assembly kind")
	}
	return o, ok
}

// deepCopied logs a failed deep copy and turns it into a nil result.
func deepCopied[T AssemblyInfo](self AssemblyInfo, c T, err error) AssemblyInfo {
	if err != nil {
		log.Warn().Err(err).
			Str("assembly", self.Base().Name()).
			Stringer("kind", self.Kind()).
			Msg("deep copy failed")
		return nil
	}
	return c
}

// ownedValue clones a value copied from a peer. A value that cannot be
// cloned is shared.
func ownedValue(self AssemblyInfo, v any) any {
	c, err := cloneValue(v)
	if err != nil {
		log.Warn().Err(err).Str("assembly", self.Base().Name()).Msg("sharing uncloneable value")
		return v
	}
	return c
}

func ownedValues(self AssemblyInfo, vs []any) []any {
	if vs == nil {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = ownedValue(self, v)
	}
	return out
}
