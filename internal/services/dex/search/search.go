// Package search suggests entity names for partially typed queries.
package search

import (
	"context"
	"iter"

	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/resolve"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("rowedex.dex.search")

// Searcher runs one fresh prefix scan per call.
type Searcher struct {
	store  storage.CandidateSearcher
	logger *zap.Logger
}

// New builds a searcher. A nil logger discards output.
func New(store storage.CandidateSearcher, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{store: store, logger: logger}
}

// Suggest returns at most domain.MaxCandidates candidates whose name starts
// with partial, in store order. An empty partial lists the first entries.
// Zero matches is an empty slice, not an error.
func (s *Searcher) Suggest(ctx context.Context, partial string) ([]domain.Candidate, error) {
	partial = resolve.Normalize(partial)
	ctx, span := tracer.Start(ctx, "dex.suggest")
	defer span.End()

	if s.store == nil {
		err := apperrors.New(apperrors.CodeStoreUnavailable, "candidate store is not configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggest failed")
		return nil, err
	}
	candidates, err := s.store.SearchEntities(ctx, partial, domain.MaxCandidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggest failed")
		s.logger.Warn("candidate search failed", zap.String("partial", partial), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeStoreUnavailable, "suggest", err)
	}
	if len(candidates) > domain.MaxCandidates {
		candidates = candidates[:domain.MaxCandidates]
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	span.SetAttributes(attribute.Int("dex.candidates", len(candidates)))
	return candidates, nil
}

// All yields the suggestions for partial lazily. Each range over the
// sequence issues a new scan, and a store error ends it early.
func (s *Searcher) All(ctx context.Context, partial string) iter.Seq[domain.Candidate] {
	return func(yield func(domain.Candidate) bool) {
		candidates, err := s.Suggest(ctx, partial)
		if err != nil {
			return
		}
		for _, c := range candidates {
			if !yield(c) {
				return
			}
		}
	}
}
