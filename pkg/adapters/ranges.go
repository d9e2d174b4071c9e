package adapters

import (
	"fmt"

	"github.com/de-tools/vsstate/pkg/models/api"
	"github.com/de-tools/vsstate/pkg/viewsheet/rangecond"
)

// MapAPIRangeToDomain checks the bound arrays before building the range,
// which panics on unequal lengths.
func MapAPIRangeToDomain(r api.Range) (*rangecond.RangeCondition, error) {
	if len(r.Refs) == 0 {
		return nil, fmt.Errorf("range %q has no refs", r.ID)
	}
	if len(r.Mins) != len(r.Refs) || len(r.Maxes) != len(r.Refs) {
		return nil, fmt.Errorf("range %q: %d refs, %d mins, %d maxes", r.ID, len(r.Refs), len(r.Mins), len(r.Maxes))
	}
	return rangecond.New(r.ID, r.Mins, r.Maxes, r.Refs, rangecond.Bounds{
		LowerInclusive: r.LowerInclusive,
		UpperInclusive: r.UpperInclusive,
		Nullable:       r.Nullable,
	}), nil
}

func MapAPIRangesToDomain(ranges []api.Range) ([]*rangecond.RangeCondition, error) {
	out := make([]*rangecond.RangeCondition, 0, len(ranges))
	for _, r := range ranges {
		rc, err := MapAPIRangeToDomain(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}
