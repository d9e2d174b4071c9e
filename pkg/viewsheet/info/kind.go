package info

import (
	"errors"
	"fmt"
)

// Kind discriminates the concrete assembly-info types.
type Kind int

const (
	KindCheckBox Kind = iota + 1
	KindRadioButton
	KindGauge
	KindTab
	KindGroupContainer
	KindLine
	KindRectangle
	KindOval
	KindAnnotation
	KindSelectionList
)

var kindClasses = map[Kind]string{
	KindCheckBox:       "CheckBoxAssemblyInfo",
	KindRadioButton:    "RadioButtonAssemblyInfo",
	KindGauge:          "GaugeAssemblyInfo",
	KindTab:            "TabAssemblyInfo",
	KindGroupContainer: "GroupContainerAssemblyInfo",
	KindLine:           "LineAssemblyInfo",
	KindRectangle:      "RectangleAssemblyInfo",
	KindOval:           "OvalAssemblyInfo",
	KindAnnotation:     "AnnotationAssemblyInfo",
	KindSelectionList:  "SelectionListAssemblyInfo",
}

var ErrUnknownKind = errors.New("unknown assembly kind")

// Class is the persisted class attribute of the kind.
func (k Kind) Class() string {
	return kindClasses[k]
}

func (k Kind) String() string {
	if c, ok := kindClasses[k]; ok {
		return c
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func KindFromClass(class string) (Kind, error) {
	for k, c := range kindClasses {
		if c == class {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: class %q", ErrUnknownKind, class)
}

// New creates an assembly info of the given kind with design defaults.
func New(kind Kind, name string) (AssemblyInfo, error) {
	var ai AssemblyInfo
	switch kind {
	case KindCheckBox:
		ai = NewCheckBox()
	case KindRadioButton:
		ai = NewRadioButton()
	case KindGauge:
		ai = NewGauge()
	case KindTab:
		ai = NewTab()
	case KindGroupContainer:
		ai = NewGroupContainer()
	case KindLine:
		ai = NewLine()
	case KindRectangle:
		ai = NewRectangle()
	case KindOval:
		ai = NewOval()
	case KindAnnotation:
		ai = NewAnnotation()
	case KindSelectionList:
		ai = NewSelectionList()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	ai.Base().SetName(name)
	return ai, nil
}
