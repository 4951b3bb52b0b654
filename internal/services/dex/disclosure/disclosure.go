// Package disclosure builds the drill-down views offered with every lookup.
package disclosure

import (
	"github.com/louisbranch/rowedex/internal/services/dex/controlid"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
)

// View is one drill-down panel reachable from a lookup reply.
type View struct {
	Name      controlid.View
	Label     string
	ControlID string
}

// ViewsFor returns every registered view for entity in registry order. The
// sentinel gets the full set too; its handlers answer with empty listings.
func ViewsFor(entity domain.Entity) ([]View, error) {
	registry := controlid.Registry()
	views := make([]View, 0, len(registry))
	for _, name := range registry {
		id, err := controlid.Encode(name, entity.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, View{Name: name, Label: name.Label(), ControlID: id})
	}
	return views, nil
}

// Controls projects views onto reply controls.
func Controls(views []View) []reply.Control {
	controls := make([]reply.Control, len(views))
	for i, v := range views {
		controls[i] = reply.Control{ID: v.ControlID, Label: v.Label}
	}
	return controls
}
