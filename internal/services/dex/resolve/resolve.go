// Package resolve turns a raw lookup query into an entity record.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
	"github.com/louisbranch/rowedex/internal/platform/telemetry/metrics"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/unicode/norm"
)

var tracer = otel.Tracer("rowedex.dex.resolve")

// Resolution results reported to metrics.
const (
	ResultFound    = "found"
	ResultSentinel = "sentinel"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Resolver resolves queries with a fresh store read per call.
type Resolver struct {
	store   storage.EntityReader
	metrics *metrics.Metrics
}

// New builds a resolver. m may be nil.
func New(store storage.EntityReader, m *metrics.Metrics) *Resolver {
	return &Resolver{store: store, metrics: m}
}

// Resolve returns the entity matching query.
//
// A query made only of ASCII digits is an id and never falls back to a name
// match; a missing id yields domain.Sentinel. Any other query is a name
// lookup and a miss yields domain.NotFound. Neither miss is an error. Store
// failures return a STORE_UNAVAILABLE error.
func (r *Resolver) Resolve(ctx context.Context, query string) (domain.Entity, error) {
	query = Normalize(query)
	ctx, span := tracer.Start(ctx, "dex.resolve")
	defer span.End()

	entity, result, err := r.resolve(ctx, query)
	span.SetAttributes(
		attribute.String("dex.result", result),
		attribute.Int64("dex.entity_id", entity.ID),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
	}
	r.metrics.ObserveResolution(result)
	return entity, err
}

func (r *Resolver) resolve(ctx context.Context, query string) (domain.Entity, string, error) {
	if query == "" {
		return domain.NotFound(query), ResultNotFound, nil
	}
	if r.store == nil {
		return domain.Entity{}, ResultError, apperrors.New(apperrors.CodeStoreUnavailable, "entity store is not configured")
	}

	if IsID(query) {
		id, err := strconv.ParseInt(query, 10, 64)
		if err != nil {
			// Out of int64 range: no row can carry this id.
			return domain.Sentinel(), ResultSentinel, nil
		}
		entity, err := r.store.GetEntityByID(ctx, id)
		switch {
		case err == nil:
			return entity, ResultFound, nil
		case errors.Is(err, storage.ErrNotFound):
			return domain.Sentinel(), ResultSentinel, nil
		default:
			return domain.Entity{}, ResultError, storeFault(fmt.Sprintf("resolve id %d", id), err)
		}
	}

	entity, err := r.store.GetEntityByName(ctx, query)
	switch {
	case err == nil:
		return entity, ResultFound, nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.NotFound(query), ResultNotFound, nil
	default:
		return domain.Entity{}, ResultError, storeFault(fmt.Sprintf("resolve name %q", query), err)
	}
}

// IsID reports whether query is an unsigned decimal string.
func IsID(query string) bool {
	if query == "" {
		return false
	}
	for i := 0; i < len(query); i++ {
		if query[i] < '0' || query[i] > '9' {
			return false
		}
	}
	return true
}

// Normalize trims surrounding space and composes the query to NFC so names
// typed with combining accents match stored names.
func Normalize(query string) string {
	return norm.NFC.String(strings.TrimSpace(query))
}

func storeFault(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, message, err)
}
