package info

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/vsstate/pkg/viewsheet/condition"
	"github.com/de-tools/vsstate/pkg/xmlutil"
)

func reparse(t *testing.T, el *xmlutil.Element) *xmlutil.Element {
	t.Helper()
	out, err := xmlutil.ParseString(xmlutil.String(el))
	require.NoError(t, err)
	return out
}

func TestValueObjects_RoundTrip(t *testing.T) {
	t.Run("title", func(t *testing.T) {
		title := NewTitleInfo("Sales <by> region")
		title.Visible.SetDesignValue("=showTitle")
		title.Padding = Insets{Top: 2, Left: 4}

		got := NewTitleInfo("")
		got.ParseXML(reparse(t, title.WriteXML()))

		assert.True(t, title.Equal(got))
		assert.Equal(t, "Sales <by> region", got.Title.DesignValue())
	})

	t.Run("title with empty and null text stay distinct", func(t *testing.T) {
		empty := NewTitleInfo("")
		null := NewTitleInfo("")
		null.Title.ClearDesignValue()

		gotEmpty, gotNull := NewTitleInfo("x"), NewTitleInfo("x")
		gotEmpty.ParseXML(reparse(t, empty.WriteXML()))
		gotNull.ParseXML(reparse(t, null.WriteXML()))

		assert.False(t, gotEmpty.Title.IsNull())
		assert.Equal(t, "", gotEmpty.Title.DesignValue())
		assert.True(t, gotNull.Title.IsNull())
	})

	t.Run("scale", func(t *testing.T) {
		scale := NewScaleInfo()
		scale.Min.SetDesignValue("10")
		scale.Max.SetDesignValue("=maxTarget")
		scale.Logarithmic.SetDesignValue("true")

		got := NewScaleInfo()
		got.ParseXML(reparse(t, scale.WriteXML()))

		assert.True(t, scale.Equal(got))
		assert.True(t, got.MajorInc.IsNull())
	})

	t.Run("label", func(t *testing.T) {
		label := NewLabelInfo()
		label.Position.SetDesignValue("2")
		label.Format.Foreground.SetDesignValue("#ff0000")

		got := NewLabelInfo()
		got.ParseXML(reparse(t, label.WriteXML()))

		assert.True(t, label.Equal(got))
		assert.Equal(t, 0xff0000, got.Format.Foreground.RuntimeValue(true))
	})

	t.Run("date period", func(t *testing.T) {
		p := NewDatePeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})

		got := NewDatePeriod(time.Time{}, time.Time{})
		got.ParseXML(reparse(t, p.WriteXML()))

		assert.True(t, p.Equal(got))
		assert.True(t, got.End.IsNull())
	})

	t.Run("custom periods", func(t *testing.T) {
		c := NewCustomPeriods(
			NewDatePeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
			NewDatePeriod(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)),
		)

		got := NewCustomPeriods()
		got.ParseXML(reparse(t, c.WriteXML()))

		assert.True(t, c.Equal(got))
	})
}

func TestTitleInfo_LegacyAttributes(t *testing.T) {
	// Given a document written before titles had their own element
	el, err := xmlutil.ParseString(
		`<assemblyInfo titleVisible="false" titleHeight="24"><title><![CDATA[Region]]></title></assemblyInfo>`)
	require.NoError(t, err)

	// When
	title := NewTitleInfo("default")
	parseTitleFrom(el, title)

	// Then
	assert.Equal(t, "Region", title.Text())
	assert.False(t, title.IsVisible())
	assert.Equal(t, 24, title.Height.RuntimeValue(true))
}

func TestDatePeriod_Contains(t *testing.T) {
	q1 := NewDatePeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	open := NewDatePeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})

	assert.True(t, q1.Contains(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, q1.Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, q1.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, open.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	periods := NewCustomPeriods(q1)
	periods.Add(NewDatePeriod(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, periods.Contains(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, periods.Contains(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))

	pred, err := condition.Compile(periods.ConditionList("orderDate"))
	require.NoError(t, err)
	assert.True(t, pred(condition.MapRow{"orderDate": time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)}))
	assert.False(t, pred(condition.MapRow{"orderDate": time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}))
	assert.True(t, NewCustomPeriods().ConditionList("orderDate").IsEmpty())
}

func TestDrillFilterInfo(t *testing.T) {
	year := condition.Single("year", condition.Equal(2024))
	quarter := condition.Single("quarter", condition.Equal(2))
	lateQuarter := condition.Single("quarter", condition.Equal(3))

	t.Run("null list pops one entry for the field", func(t *testing.T) {
		d := NewDrillFilterInfo()
		d.SetDrillFilterConditionList("year", year)
		d.SetDrillFilterConditionList("quarter", quarter)
		d.SetDrillFilterConditionList("quarter", lateQuarter)

		d.SetDrillFilterConditionList("quarter", nil)

		require.Equal(t, 2, d.Len())
		got, ok := d.DrillFilterConditionList("quarter")
		require.True(t, ok)
		assert.True(t, got.Equal(quarter))
		assert.True(t, d.Contains("year"))
		assert.Equal(t, []string{"quarter", "year"}, d.Fields())
	})

	t.Run("merged list follows mutations", func(t *testing.T) {
		d := NewDrillFilterInfo()
		d.SetDrillFilterConditionList("year", year)
		first := d.AllConditions()
		assert.True(t, first.Equal(year))

		d.SetDrillFilterConditionList("quarter", quarter)
		pred, err := condition.Compile(d.AllConditions())
		require.NoError(t, err)
		assert.True(t, pred(condition.MapRow{"year": 2024, "quarter": 2}))
		assert.False(t, pred(condition.MapRow{"year": 2024, "quarter": 1}))

		d.Clear()
		assert.True(t, d.AllConditions().IsEmpty())
	})

	t.Run("xml round trip", func(t *testing.T) {
		d := NewDrillFilterInfo()
		d.SetDrillFilterConditionList("year", year)
		d.SetDrillFilterConditionList("quarter", condition.AndMerge(quarter, condition.Single("region", condition.OneOf("East", "West"))))

		got := NewDrillFilterInfo()
		require.NoError(t, got.ParseXML(reparse(t, d.WriteXML())))

		assert.True(t, d.Equal(got))
	})

	t.Run("clone is independent", func(t *testing.T) {
		d := NewDrillFilterInfo()
		d.SetDrillFilterConditionList("year", year)
		c := d.Clone()
		c.SetDrillFilterConditionList("quarter", quarter)

		assert.Equal(t, 1, d.Len())
		assert.Equal(t, 2, c.Len())
	})

	t.Run("readers run alongside push and pop", func(t *testing.T) {
		// Given a stack with a base entry
		d := NewDrillFilterInfo()
		d.SetDrillFilterConditionList("year", year)

		// When one goroutine pushes and pops while others read
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				d.SetDrillFilterConditionList("quarter", quarter)
				d.SetDrillFilterConditionList("quarter", nil)
			}
		}()
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 500; i++ {
					all := d.AllConditions()
					assert.NoError(t, all.Validate())
					assert.Contains(t, all.Fields(), "year")
					_ = d.Fields()
					_ = d.Clone()
					_ = d.WriteXML()
				}
			}()
		}
		wg.Wait()

		// Then every pushed entry was popped again
		assert.Equal(t, 1, d.Len())
		assert.True(t, d.AllConditions().Equal(year))
	})
}

func TestChangeHint_String(t *testing.T) {
	assert.Equal(t, "none", NoneChanged.String())
	assert.Equal(t, "input|view", InputDataChanged.Union(ViewChanged).String())
	assert.True(t, InputDataChanged.Union(OutputDataChanged).Has(OutputDataChanged))
	assert.False(t, NoneChanged.Has(NoneChanged))
}

func TestConditionListXML_RejectsUnknownOp(t *testing.T) {
	el, err := xmlutil.ParseString(`<conditionList><item op="like" level="0"><field>a</field></item></conditionList>`)
	require.NoError(t, err)

	_, err = ParseConditionList(el)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "like"))
}

func TestConditionListXML_RejectsMissingValues(t *testing.T) {
	tests := []struct {
		name string
		item string
	}{
		{"equal without value", `<item op="equal" level="0"><field>region</field></item>`},
		{"less without value", `<item op="less" level="0"><field>amount</field></item>`},
		{"between with one value", `<item op="between" level="0"><field>amount</field><value type="integer">1</value></item>`},
		{"one of without values", `<item op="oneOf" level="0"><field>state</field></item>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := xmlutil.ParseString(`<conditionList>` + tt.item + `</conditionList>`)
			require.NoError(t, err)

			_, err = ParseConditionList(el)

			assert.ErrorIs(t, err, condition.ErrMalformed)
		})
	}

	t.Run("null needs no value", func(t *testing.T) {
		el, err := xmlutil.ParseString(`<conditionList><item op="null" level="0"><field>region</field></item></conditionList>`)
		require.NoError(t, err)

		l, err := ParseConditionList(el)

		require.NoError(t, err)
		assert.Equal(t, 1, l.Len())
	})
}
