// Package matchup shapes type effectiveness rows for a resolved entity.
package matchup

import (
	"context"
	"fmt"

	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"github.com/louisbranch/rowedex/internal/services/dex/taxonomy"
)

// Aggregator requests the store's effectiveness join and orders the result by
// the taxonomy. Multipliers are never recomputed here.
type Aggregator struct {
	store    storage.MatchupReader
	taxonomy *taxonomy.Taxonomy
}

// New builds an aggregator.
func New(store storage.MatchupReader, tax *taxonomy.Taxonomy) *Aggregator {
	return &Aggregator{store: store, taxonomy: tax}
}

// Matchups returns one row per taxonomy type in canonical order. A
// single-typed entity (including a duplicated type) queries with one
// defending type; an entity without types yields no rows and no store call.
// Types the store omits read as neutral and rows for unknown types are dropped.
func (a *Aggregator) Matchups(ctx context.Context, entity domain.Entity) ([]domain.TypeMatchup, error) {
	labels := entity.Types.Labels()
	if len(labels) == 0 {
		return []domain.TypeMatchup{}, nil
	}
	if a.store == nil || a.taxonomy == nil {
		return nil, fmt.Errorf("matchup aggregator is not configured")
	}

	var secondary *int64
	if len(labels) == 2 {
		id := labels[1].ID
		secondary = &id
	}
	rows, err := a.store.TypeMatchups(ctx, labels[0].ID, secondary)
	if err != nil {
		return nil, fmt.Errorf("type matchups for %d: %w", entity.ID, err)
	}
	return a.shape(rows), nil
}

func (a *Aggregator) shape(rows []domain.TypeMatchup) []domain.TypeMatchup {
	types := a.taxonomy.Types()
	out := make([]domain.TypeMatchup, len(types))
	for i, typ := range types {
		out[i] = domain.TypeMatchup{Type: typ.Name, Defensive: 1, Offensive: 1}
	}
	for _, row := range rows {
		if i, ok := a.taxonomy.Position(row.Type); ok {
			out[i] = domain.TypeMatchup{Type: types[i].Name, Defensive: row.Defensive, Offensive: row.Offensive}
		}
	}
	return out
}
