// Package storage defines the read-only contracts the dex consumes.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/rowedex/internal/services/dex/domain"
)

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable indicates the store could not be reached or read.
	ErrUnavailable = errors.New("store unavailable")
)

// EntityReader fetches full entity records.
type EntityReader interface {
	GetEntityByID(ctx context.Context, id int64) (domain.Entity, error)
	// GetEntityByName prefers an exact case-insensitive match and otherwise
	// returns the lowest id whose name starts with name.
	GetEntityByName(ctx context.Context, name string) (domain.Entity, error)
}

// CandidateSearcher scans entity names by prefix.
type CandidateSearcher interface {
	SearchEntities(ctx context.Context, prefix string, limit int) ([]domain.Candidate, error)
}

// MoveReader lists moves related to an entity. An unknown id yields an empty listing.
type MoveReader interface {
	ListMoves(ctx context.Context, entityID int64, kind domain.MoveKind) ([]domain.Move, error)
}

// AbilityReader lists the abilities of an entity.
type AbilityReader interface {
	ListAbilities(ctx context.Context, entityID int64) ([]domain.Ability, error)
}

// MatchupReader joins the effectiveness table for one or two defending types.
// Rows are keyed by attacking type name; defensive values stack
// multiplicatively across both types and offensive values take the best of
// the two.
type MatchupReader interface {
	TypeMatchups(ctx context.Context, primary int64, secondary *int64) ([]domain.TypeMatchup, error)
}

// Store is the full read surface of the dex.
type Store interface {
	EntityReader
	CandidateSearcher
	MoveReader
	AbilityReader
	MatchupReader
}
