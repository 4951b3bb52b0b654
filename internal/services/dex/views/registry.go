package views

import (
	"github.com/louisbranch/rowedex/internal/services/dex/controlid"
	"github.com/louisbranch/rowedex/internal/services/dex/matchup"
	"github.com/louisbranch/rowedex/internal/services/dex/router"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"github.com/louisbranch/rowedex/internal/services/dex/taxonomy"
)

// Handlers maps every registered view to its handler.
func Handlers(store storage.Store, tax *taxonomy.Taxonomy) map[controlid.View]router.Handler {
	return map[controlid.View]router.Handler{
		controlid.ViewTypeMatchup: NewTypeMatchup(store, matchup.New(store, tax), tax.LongestName()),
		controlid.ViewLevelUp:     LevelUp(store),
		controlid.ViewMachine:     Machine(store),
		controlid.ViewTutor:       Tutor(store),
		controlid.ViewEgg:         Egg(store),
	}
}
