// Package lookup answers the /dex command: resolve the query, then render the
// summary card with its drill-down controls.
package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
	"github.com/louisbranch/rowedex/internal/platform/logging"
	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"github.com/louisbranch/rowedex/internal/services/dex/disclosure"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"github.com/louisbranch/rowedex/internal/services/dex/storage"
	"github.com/louisbranch/rowedex/internal/services/dex/taxonomy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	speciesURL  = "https://ydarissep.github.io/R.O.W.E-Pokedex/?species=%s&table=speciesTable"
	placeholder = "https://raw.githubusercontent.com/BelialClover/RoweRepo/main/graphics/pokemon/question_mark/circled/front.png"
)

var tracer = otel.Tracer("rowedex.dex.lookup")

// Resolver resolves a raw query to an entity.
type Resolver interface {
	Resolve(ctx context.Context, query string) (domain.Entity, error)
}

// Service renders lookup replies.
type Service struct {
	resolver  Resolver
	abilities storage.AbilityReader
	taxonomy  *taxonomy.Taxonomy
	logger    *zap.Logger
}

// New builds the lookup service.
func New(resolver Resolver, abilities storage.AbilityReader, tax *taxonomy.Taxonomy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{resolver: resolver, abilities: abilities, taxonomy: tax, logger: logger}
}

// Lookup resolves query and renders the summary. A missing entity renders the
// sentinel card. When the store is unreachable the reply is a transient
// "try again" message and the error is returned alongside it.
func (s *Service) Lookup(ctx context.Context, query string) (reply.Reply, error) {
	ctx, span := tracer.Start(ctx, "dex.lookup")
	defer span.End()
	locale := requestctx.LocaleFromContext(ctx)

	entity, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return reply.Reply{Content: apperrors.UserMessage(err, locale), Ephemeral: true}, err
	}
	span.SetAttributes(attribute.Int64("dex.entity_id", entity.ID))

	views, err := disclosure.ViewsFor(entity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return reply.Reply{Content: apperrors.UserMessage(err, locale), Ephemeral: true}, err
	}

	return reply.Reply{
		Embeds:    []reply.Embed{s.summary(ctx, entity)},
		Controls:  disclosure.Controls(views),
		Ephemeral: true,
	}, nil
}

func (s *Service) summary(ctx context.Context, e domain.Entity) reply.Embed {
	embed := reply.Embed{
		Title:     fmt.Sprintf("#%d: %s", e.DexNumber, e.Name),
		URL:       fmt.Sprintf(speciesURL, url.QueryEscape(e.InternalName)),
		Colour:    taxonomy.DefaultColour,
		Thumbnail: e.Sprite,
	}
	if embed.Thumbnail == "" {
		embed.Thumbnail = placeholder
	}
	if primary, ok := e.Types.First(); ok && s.taxonomy != nil {
		embed.Colour = s.taxonomy.Colour(primary.Name)
	}
	embed.Fields = []reply.Field{
		{Name: "Types", Value: e.Types.String(), Inline: true},
		{Name: "Abilities", Value: s.abilityField(ctx, e)},
		{Name: "Egg Groups", Value: e.EggGroups.String(), Inline: true},
		{Name: "Held Items", Value: e.Items.String(), Inline: true},
		{Name: "Stats", Value: StatsBlock(e.Stats)},
	}
	return embed
}

// abilityField lists abilities. A failed read degrades this field only.
func (s *Service) abilityField(ctx context.Context, e domain.Entity) string {
	if e.IsSentinel() || s.abilities == nil {
		return "None"
	}
	abilities, err := s.abilities.ListAbilities(ctx, e.ID)
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("list abilities failed",
			zap.Int64("entity_id", e.ID), zap.Error(err))
		return "Unavailable"
	}
	if len(abilities) == 0 {
		return "None"
	}
	var b strings.Builder
	for _, a := range abilities {
		fmt.Fprintf(&b, "%s:\t%s\n", a.Name, a.Description)
	}
	return b.String()
}

// StatsBlock renders the six attributes and their total as a code block.
func StatsBlock(s domain.Stats) string {
	return fmt.Sprintf("```c\nHP: \t%d\nAtk:\t%d\nDef:\t%d\nSpA:\t%d\nSpD:\t%d\nSpe:\t%d\nBST:\t%d```",
		s.HP, s.Attack, s.Defense, s.SpAttack, s.SpDefense, s.Speed, s.Total())
}
