package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/de-tools/vsstate/pkg/runtime/terminal/export"
	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/viewsheet/rangecond"
)

type RangeCmd struct {
	id             string
	refs           []string
	mins           []string
	maxes          []string
	lowerExclusive bool
	upperExclusive bool
	nullable       bool
	rowsPath       string
	reporter       *export.Reporter
}

func NewRangeCmd(reporter *export.Reporter) *cobra.Command {
	rc := &RangeCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Compile a composite range into a condition list",
		Example: `  vsstate range --ref year --ref month --min 2023,12 --max 2024,1
  vsstate range --ref amount --min 100 --max null --rows rows.json`,
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.id, "id", "range", "Range group id")
	cmd.Flags().StringArrayVar(&rc.refs, "ref", nil, "Dimension level field, repeat for each level")
	cmd.Flags().StringSliceVar(&rc.mins, "min", nil, "Lower bound per level, null for the null member")
	cmd.Flags().StringSliceVar(&rc.maxes, "max", nil, "Upper bound per level, null for the null member")
	cmd.Flags().BoolVar(&rc.lowerExclusive, "lower-exclusive", false, "Exclude the lower bound")
	cmd.Flags().BoolVar(&rc.upperExclusive, "upper-exclusive", false, "Exclude the upper bound")
	cmd.Flags().BoolVar(&rc.nullable, "nullable", false, "Let null last-level values pass the upper bound")
	cmd.Flags().StringVar(&rc.rowsPath, "rows", "", "JSON file with an array of rows to evaluate")

	_ = cmd.MarkFlagRequired("ref")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")

	return cmd
}

// ParseBound converts a command line bound: null, integers, floats and
// booleans are typed, anything else stays a string.
func ParseBound(s string) any {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := cast.ToInt64E(s); err == nil && !strings.ContainsAny(s, ".eE") {
		return n
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return cast.ToBool(s)
	}
	return s
}

func parseBounds(raw []string) []any {
	out := make([]any, len(raw))
	for i, s := range raw {
		out[i] = ParseBound(s)
	}
	return out
}

func (rc *RangeCmd) build() (*rangecond.RangeCondition, error) {
	if len(rc.mins) != len(rc.refs) || len(rc.maxes) != len(rc.refs) {
		return nil, fmt.Errorf("need one --min and --max value per --ref: %d refs, %d mins, %d maxes",
			len(rc.refs), len(rc.mins), len(rc.maxes))
	}
	return rangecond.New(rc.id, parseBounds(rc.mins), parseBounds(rc.maxes), rc.refs, rangecond.Bounds{
		LowerInclusive: !rc.lowerExclusive,
		UpperInclusive: !rc.upperExclusive,
		Nullable:       rc.nullable,
	}), nil
}

func readRows(path string) ([]condition.MapRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []condition.MapRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode rows %s: %w", path, err)
	}
	return rows, nil
}

func (rc *RangeCmd) run(_ *cobra.Command, _ []string) error {
	r, err := rc.build()
	if err != nil {
		return err
	}

	l := r.ConditionList()
	clause, args, err := condition.ToSQL(l)
	if err != nil {
		return fmt.Errorf("render condition list: %w", err)
	}
	report := &export.RangeReport{Condition: l.String(), SQL: clause, Args: args}

	if rc.rowsPath != "" {
		rows, err := readRows(rc.rowsPath)
		if err != nil {
			return err
		}
		for _, row := range rows {
			report.Matches = append(report.Matches, export.RangeMatch{Row: row, Match: r.Evaluate(row)})
		}
	}
	return rc.reporter.Range(report)
}
