package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/matchup"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
)

// TypeMatchupContent heads every type effectiveness reply.
const TypeMatchupContent = "Type effectiveness/resistance."

// TypeMatchupHandler renders defensive and offensive multipliers.
type TypeMatchupHandler struct {
	entities   storage.EntityReader
	aggregator *matchup.Aggregator
	nameWidth  int
}

// NewTypeMatchup builds the handler. nameWidth is the longest type name.
func NewTypeMatchup(entities storage.EntityReader, aggregator *matchup.Aggregator, nameWidth int) *TypeMatchupHandler {
	return &TypeMatchupHandler{entities: entities, aggregator: aggregator, nameWidth: nameWidth}
}

// Handle re-reads the entity, since routing carries only its id, then asks
// the aggregator for its matchups.
func (h *TypeMatchupHandler) Handle(ctx context.Context, entityID int64) (reply.Reply, error) {
	if h.entities == nil || h.aggregator == nil {
		return reply.Reply{}, fmt.Errorf("type matchup handler is not configured")
	}
	entity, err := h.entities.GetEntityByID(ctx, entityID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		entity = domain.Sentinel()
	case err != nil:
		return reply.Reply{}, fmt.Errorf("get entity %d: %w", entityID, err)
	}

	rows, err := h.aggregator.Matchups(ctx, entity)
	if err != nil {
		return reply.Reply{}, err
	}
	if len(rows) == 0 {
		return reply.Reply{Content: TypeMatchupContent + "\nNo type data.", Ephemeral: true}, nil
	}
	return reply.Reply{
		Content: TypeMatchupContent,
		Embeds: []reply.Embed{{
			Fields: []reply.Field{
				{Name: "Defensive", Value: h.render(rows, func(m domain.TypeMatchup) float64 { return m.Defensive }), Inline: true},
				{Name: "Offensive", Value: h.render(rows, func(m domain.TypeMatchup) float64 { return m.Offensive }), Inline: true},
			},
		}},
		Ephemeral: true,
	}, nil
}

// render writes "Type:<pad>multiplier" rows in a code block, padding names
// so the multipliers line up.
func (h *TypeMatchupHandler) render(rows []domain.TypeMatchup, value func(domain.TypeMatchup) float64) string {
	var b strings.Builder
	b.WriteString("```c\n")
	for _, row := range rows {
		pad := max(h.nameWidth-utf8.RuneCountInString(row.Type), 0) + 1
		b.WriteString(row.Type)
		b.WriteByte(':')
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(strconv.FormatFloat(value(row), 'f', -1, 64))
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}
