package rangecond

import (
	"fmt"
	"strings"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
)

type NodeKind int

const (
	NodeTrue NodeKind = iota
	NodeFalse
	NodeLeaf
	NodeAnd
	NodeOr
)

// Node is a boolean condition tree built per bound direction before it is
// flattened into a condition list.
type Node struct {
	Kind      NodeKind
	Field     string
	Condition condition.Condition
	Children  []*Node
}

var (
	trueNode  = &Node{Kind: NodeTrue}
	falseNode = &Node{Kind: NodeFalse}
)

func True() *Node  { return trueNode }
func False() *Node { return falseNode }

func Leaf(field string, c condition.Condition) *Node {
	return &Node{Kind: NodeLeaf, Field: field, Condition: c}
}

func And(children ...*Node) *Node {
	return &Node{Kind: NodeAnd, Children: children}
}

func Or(children ...*Node) *Node {
	return &Node{Kind: NodeOr, Children: children}
}

// Simplify folds TRUE/FALSE constants bottom-up: AND with FALSE is FALSE, OR
// with TRUE is TRUE, and the neutral constant is dropped otherwise. A
// junction left with one operand collapses to it; one left with none becomes
// its neutral constant.
func Simplify(n *Node) *Node {
	switch n.Kind {
	case NodeTrue, NodeFalse, NodeLeaf:
		return n
	case NodeAnd, NodeOr:
		absorbing, neutral := NodeFalse, NodeTrue
		if n.Kind == NodeOr {
			absorbing, neutral = NodeTrue, NodeFalse
		}

		kept := make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			s := Simplify(c)
			switch s.Kind {
			case absorbing:
				return s
			case neutral:
				continue
			}
			kept = append(kept, s)
		}

		switch len(kept) {
		case 0:
			if neutral == NodeTrue {
				return True()
			}
			return False()
		case 1:
			return kept[0]
		}
		return &Node{Kind: n.Kind, Children: kept}
	default:
		panic(fmt.Sprintf("rangecond: unknown node kind %d", int(n.Kind)))
	}
}

// Flatten appends a simplified tree to a condition list. A TRUE root adds
// nothing; a FALSE root adds a never-matching item on field.
func Flatten(n *Node, field string) *condition.List {
	l := condition.NewList()
	switch n.Kind {
	case NodeTrue:
		return l
	case NodeFalse:
		l.AddItem(field, condition.Never(), 0)
		return l
	}
	flatten(n, 0, l)
	return l
}

func flatten(n *Node, level int, l *condition.List) {
	switch n.Kind {
	case NodeLeaf:
		l.AddItem(n.Field, n.Condition, level)
	case NodeAnd, NodeOr:
		j := condition.And
		if n.Kind == NodeOr {
			j = condition.Or
		}
		for i, c := range n.Children {
			if i > 0 {
				l.AddJunction(j, level)
			}
			flatten(c, level+1, l)
		}
	case NodeTrue, NodeFalse:
		panic("rangecond: constant inside a simplified tree")
	default:
		panic(fmt.Sprintf("rangecond: unknown node kind %d", int(n.Kind)))
	}
}

func (n *Node) String() string {
	switch n.Kind {
	case NodeTrue:
		return "TRUE"
	case NodeFalse:
		return "FALSE"
	case NodeLeaf:
		return fmt.Sprintf("[%s %s]", n.Field, n.Condition)
	case NodeAnd, NodeOr:
		op := " AND "
		if n.Kind == NodeOr {
			op = " OR "
		}
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, op) + ")"
	default:
		panic(fmt.Sprintf("rangecond: unknown node kind %d", int(n.Kind)))
	}
}
