// Package views renders the drill-down panels reached through control ids.
package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
)

// MoveListHandler lists one kind of related move for an entity.
type MoveListHandler struct {
	store storage.MoveReader
	kind  domain.MoveKind
	title string
}

// NewMoveList builds a handler for kind headed by title.
func NewMoveList(store storage.MoveReader, kind domain.MoveKind, title string) *MoveListHandler {
	return &MoveListHandler{store: store, kind: kind, title: title}
}

// LevelUp lists level-up moves with their levels.
func LevelUp(store storage.MoveReader) *MoveListHandler {
	return NewMoveList(store, domain.MoveKindLevelUp, "Level-Up moves")
}

// Machine lists moves taught by HMs and TMs.
func Machine(store storage.MoveReader) *MoveListHandler {
	return NewMoveList(store, domain.MoveKindMachine, "HM/TM moves")
}

// Tutor lists tutor moves.
func Tutor(store storage.MoveReader) *MoveListHandler {
	return NewMoveList(store, domain.MoveKindTutor, "Tutor moves")
}

// Egg lists egg moves.
func Egg(store storage.MoveReader) *MoveListHandler {
	return NewMoveList(store, domain.MoveKindEgg, "Egg moves")
}

// Handle reads the listing fresh from the store. An id with no rows, the
// sentinel included, renders an empty listing.
func (h *MoveListHandler) Handle(ctx context.Context, entityID int64) (reply.Reply, error) {
	if h.store == nil {
		return reply.Reply{}, fmt.Errorf("move store is not configured")
	}
	moves, err := h.store.ListMoves(ctx, entityID, h.kind)
	if err != nil {
		return reply.Reply{}, fmt.Errorf("list %s moves for %d: %w", h.kind, entityID, err)
	}
	return reply.Reply{Content: RenderMoves(h.title, moves), Ephemeral: true}, nil
}

// RenderMoves renders a titled listing, one move per line.
func RenderMoves(title string, moves []domain.Move) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	if len(moves) == 0 {
		b.WriteString("No moves.\n")
		return b.String()
	}
	for _, m := range moves {
		b.WriteString(m.Name)
		if m.HasLevel {
			b.WriteString(" (Level ")
			b.WriteString(strconv.Itoa(m.Level))
			b.WriteByte(')')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
