package store

import "time"

type Viewsheet struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assembly is a persisted assembly info. XML holds the serialized info.
type Assembly struct {
	Viewsheet string
	Name      string
	Kind      string
	Position  int
	XML       string
	UpdatedAt time.Time
}

type AssemblyIdentity struct {
	Viewsheet string
	Name      string
}
