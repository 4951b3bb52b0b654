// Package discord adapts Discord interactions to the dex use cases.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/louisbranch/rowedex/internal/platform/logging"
	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"github.com/louisbranch/rowedex/internal/platform/telemetry/metrics"
	"github.com/louisbranch/rowedex/internal/platform/timeouts"
	"github.com/louisbranch/rowedex/internal/services/dex/domain"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"github.com/louisbranch/rowedex/internal/services/dex/router"
	"go.uber.org/zap"
)

const (
	// CommandName is the slash command users type.
	CommandName = "dex"
	// QueryOption carries the entity query; autocomplete fills it with an id.
	QueryOption = "pokemon"

	maxContentRunes    = 2000
	maxChoiceNameRunes = 100
	maxButtonsPerRow   = 5
)

// Interaction kinds used for logging and metrics.
const (
	KindCommand      = "command"
	KindAutocomplete = "autocomplete"
	KindComponent    = "component"
	KindOther        = "other"
)

// Responder sends the single response an interaction allows.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Looker answers the slash command.
type Looker interface {
	Lookup(ctx context.Context, query string) (reply.Reply, error)
}

// Suggester answers autocomplete.
type Suggester interface {
	Suggest(ctx context.Context, partial string) ([]domain.Candidate, error)
}

// Router answers component clicks.
type Router interface {
	Route(ctx context.Context, raw string) router.Outcome
}

// Handler dispatches one interaction to the matching use case.
type Handler struct {
	lookup  Looker
	suggest Suggester
	router  Router
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewHandler builds a handler. logger and m may be nil.
func NewHandler(lookup Looker, suggest Suggester, r Router, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookup:  lookup,
		suggest: suggest,
		router:  r,
		logger:  logger,
		metrics: m,
		timeout: timeouts.InteractionResponse,
	}
}

// Command is the /dex application command definition.
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        CommandName,
		Description: "Retrieve information about a Pokemon from the server PokeDex.",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         QueryOption,
			Description:  "Pokemon name or number.",
			Required:     true,
			Autocomplete: true,
		}},
	}
}

// Handle answers i within the response window. Errors are returned for
// logging only; a reply has been attempted whenever the kind is known.
func (h *Handler) Handle(ctx context.Context, resp Responder, i *discordgo.Interaction) error {
	if i == nil {
		return fmt.Errorf("interaction is required")
	}
	kind := kindOf(i)
	ctx = requestctx.WithInteraction(ctx, requestctx.Interaction{
		RequestID: i.ID,
		Kind:      kind,
		UserID:    userID(i),
		GuildID:   i.GuildID,
		Locale:    string(i.Locale),
	})
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	logger := logging.FromContext(ctx, h.logger)

	var err error
	switch kind {
	case KindCommand:
		err = h.handleCommand(ctx, resp, i)
	case KindAutocomplete:
		err = h.handleAutocomplete(ctx, resp, i)
	case KindComponent:
		err = h.handleComponent(ctx, resp, i)
	default:
		logger.Debug("ignoring interaction", zap.Int("type", int(i.Type)))
		h.metrics.ObserveInteraction(kind, "ignored")
		return nil
	}

	if err != nil {
		logger.Warn("interaction failed", zap.Error(err))
		h.metrics.ObserveInteraction(kind, "error")
		return err
	}
	h.metrics.ObserveInteraction(kind, "ok")
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, resp Responder, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	if data.Name != CommandName {
		return fmt.Errorf("unknown command %q", data.Name)
	}
	query, _ := optionValue(data.Options, QueryOption)
	body, lookupErr := h.lookup.Lookup(ctx, query)
	if err := resp.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: ResponseData(body),
	}); err != nil {
		return fmt.Errorf("respond to command: %w", err)
	}
	return lookupErr
}

func (h *Handler) handleAutocomplete(ctx context.Context, resp Responder, i *discordgo.Interaction) error {
	partial, _ := optionValue(i.ApplicationCommandData().Options, QueryOption)
	candidates, searchErr := h.suggest.Suggest(ctx, partial)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(candidates))
	for _, c := range candidates {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(c.Name, maxChoiceNameRunes),
			Value: strconv.FormatInt(c.ID, 10),
		})
	}
	if err := resp.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		return fmt.Errorf("respond to autocomplete: %w", err)
	}
	return searchErr
}

func (h *Handler) handleComponent(ctx context.Context, resp Responder, i *discordgo.Interaction) error {
	out := h.router.Route(ctx, i.MessageComponentData().CustomID)
	if err := resp.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: ResponseData(out.Reply),
	}); err != nil {
		return fmt.Errorf("respond to component: %w", err)
	}
	return nil
}

// ResponseData converts a reply into Discord message data.
func ResponseData(r reply.Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content: truncate(r.Content, maxContentRunes),
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	for _, e := range r.Embeds {
		embed := &discordgo.MessageEmbed{
			Title: e.Title,
			URL:   e.URL,
			Color: e.Colour,
		}
		if e.Thumbnail != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		data.Embeds = append(data.Embeds, embed)
	}
	for start := 0; start < len(r.Controls); start += maxButtonsPerRow {
		end := min(start+maxButtonsPerRow, len(r.Controls))
		row := discordgo.ActionsRow{}
		for _, c := range r.Controls[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    c.Label,
				Style:    discordgo.SecondaryButton,
				CustomID: c.ID,
			})
		}
		data.Components = append(data.Components, row)
	}
	return data
}

func kindOf(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return KindCommand
	case discordgo.InteractionApplicationCommandAutocomplete:
		return KindAutocomplete
	case discordgo.InteractionMessageComponent:
		return KindComponent
	default:
		return KindOther
	}
}

func userID(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	default:
		return ""
	}
}

func optionValue(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	for _, opt := range options {
		if opt == nil || opt.Name != name {
			continue
		}
		switch v := opt.Value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return "", false
	}
	return "", false
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
