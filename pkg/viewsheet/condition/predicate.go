package condition

// Row exposes field values to a predicate.
type Row interface {
	Value(field string) (any, bool)
}

// MapRow is a Row backed by a map.
type MapRow map[string]any

func (r MapRow) Value(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// Predicate evaluates a compiled list against a row.
type Predicate func(Row) bool

// Compile validates the list and builds its predicate. An empty list
// accepts every row.
func Compile(l *List) (Predicate, error) {
	if l.IsEmpty() {
		return func(Row) bool { return true }, nil
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	root, err := build(l.entries)
	if err != nil {
		return nil, err
	}
	return root.eval, nil
}

// Engine executes condition lists; the default implementation compiles them
// in memory.
type Engine interface {
	Compile(l *List) (Predicate, error)
}

type memoryEngine struct{}

func DefaultEngine() Engine {
	return memoryEngine{}
}

func (memoryEngine) Compile(l *List) (Predicate, error) {
	return Compile(l)
}
