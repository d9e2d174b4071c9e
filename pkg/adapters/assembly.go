package adapters

import (
	"fmt"

	"github.com/de-tools/vsstate/pkg/models/api"
	"github.com/de-tools/vsstate/pkg/models/store"
	"github.com/de-tools/vsstate/pkg/viewsheet/info"
)

func MapStoreAssemblyToInfo(a *store.Assembly) (info.AssemblyInfo, error) {
	if a == nil {
		return nil, fmt.Errorf("assembly record is nil")
	}

	ai, err := info.UnmarshalString(a.XML)
	if err != nil {
		return nil, fmt.Errorf("decode assembly %s/%s: %w", a.Viewsheet, a.Name, err)
	}
	if ai.Base().Name() == "" {
		ai.Base().SetName(a.Name)
	}
	return ai, nil
}

func MapInfoToStoreAssembly(viewsheet string, position int, ai info.AssemblyInfo) store.Assembly {
	return store.Assembly{
		Viewsheet: viewsheet,
		Name:      ai.Base().Name(),
		Kind:      ai.Kind().Class(),
		Position:  position,
		XML:       info.Marshal(ai),
	}
}

type titled interface {
	TitleText() string
}

// MapInfoToAPI renders ai for API clients. localize translates the title,
// pass nil to keep it as authored.
func MapInfoToAPI(ai info.AssemblyInfo, localize func(string) string) api.Assembly {
	b := ai.Base()
	out := api.Assembly{
		Name:    b.Name(),
		Kind:    ai.Kind().String(),
		Class:   ai.Kind().Class(),
		X:       b.Position.X,
		Y:       b.Position.Y,
		Width:   b.Size.Width,
		Height:  b.Size.Height,
		ZIndex:  b.ZIndex,
		Visible: b.IsVisible(),
		Enabled: b.IsEnabled(),
	}
	if t, ok := ai.(titled); ok {
		out.Title = t.TitleText()
		if localize != nil && out.Title != "" {
			out.Title = localize(out.Title)
		}
	}
	return out
}

func MapHintToAPI(h info.ChangeHint) api.ChangeHint {
	return api.ChangeHint{
		Hint:              h.String(),
		InputDataChanged:  h.Has(info.InputDataChanged),
		OutputDataChanged: h.Has(info.OutputDataChanged),
		ViewChanged:       h.Has(info.ViewChanged),
	}
}
