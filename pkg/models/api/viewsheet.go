package api

type Viewsheet struct {
	Name       string     `json:"name"`
	Session    string     `json:"session,omitempty"`
	Assemblies []Assembly `json:"assemblies"`
}

type Assembly struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Class   string `json:"class"`
	Title   string `json:"title,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	ZIndex  int    `json:"z_index"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
}

type ChangeHint struct {
	Hint              string `json:"hint"`
	InputDataChanged  bool   `json:"input_data_changed"`
	OutputDataChanged bool   `json:"output_data_changed"`
	ViewChanged       bool   `json:"view_changed"`
}

// Range is a composite range over ordered dimension levels. Null bounds
// are JSON nulls.
type Range struct {
	ID             string   `json:"id"`
	Mins           []any    `json:"mins"`
	Maxes          []any    `json:"maxes"`
	Refs           []string `json:"refs"`
	LowerInclusive bool     `json:"lower_inclusive"`
	UpperInclusive bool     `json:"upper_inclusive"`
	Nullable       bool     `json:"nullable"`
}

type RangeEvaluateRequest struct {
	Ranges []Range          `json:"ranges"`
	Rows   []map[string]any `json:"rows"`
}

type RangeEvaluateResponse struct {
	Condition string `json:"condition"`
	Matches   []bool `json:"matches"`
}

type FilterRequest struct {
	Table     string   `json:"table"`
	Columns   []string `json:"columns,omitempty"`
	DateField string   `json:"date_field,omitempty"`
	Ranges    []Range  `json:"ranges,omitempty"`
}

type FilterResponse struct {
	Condition string           `json:"condition"`
	Count     int              `json:"count"`
	Rows      []map[string]any `json:"rows"`
}

type DrillRequest struct {
	Field string `json:"field"`
	// Values drills into the listed members; empty pops the latest drill
	// on the field.
	Values []any `json:"values,omitempty"`
}

type RefreshRequest struct {
	Variables map[string]any `json:"variables"`
}
