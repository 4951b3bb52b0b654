package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Gateway is the slice of *discordgo.Session the bot drives.
type Gateway interface {
	Responder
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Bot registers the slash command and serves interactions until stopped.
type Bot struct {
	gateway Gateway
	handler *Handler
	appID   func() string
	guildID string
	logger  *zap.Logger
}

// NewSession creates a bot session that needs only the guilds intent.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// NewBot wraps a live session. The application id is read from the session
// state once the gateway is open.
func NewBot(session *discordgo.Session, handler *Handler, guildID string, logger *zap.Logger) *Bot {
	return newBot(session, handler, guildID, logger, func() string {
		if session.State == nil || session.State.User == nil {
			return ""
		}
		return session.State.User.ID
	})
}

func newBot(gateway Gateway, handler *Handler, guildID string, logger *zap.Logger, appID func() string) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{gateway: gateway, handler: handler, appID: appID, guildID: guildID, logger: logger}
}

// Run opens the gateway, registers /dex (guild-scoped when a guild id is
// set), and blocks until ctx ends. Events already in flight when ctx ends
// still get their reply.
func (b *Bot) Run(ctx context.Context) error {
	eventCtx := context.WithoutCancel(ctx)
	remove := b.gateway.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		_ = b.handler.Handle(eventCtx, b.gateway, ic.Interaction)
	})
	defer remove()

	if err := b.gateway.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() {
		if err := b.gateway.Close(); err != nil {
			b.logger.Warn("close discord gateway", zap.Error(err))
		}
	}()

	appID := b.appID()
	if appID == "" {
		return fmt.Errorf("discord application id is unknown after open")
	}
	if _, err := b.gateway.ApplicationCommandBulkOverwrite(appID, b.guildID, []*discordgo.ApplicationCommand{Command()}); err != nil {
		return fmt.Errorf("register /%s: %w", CommandName, err)
	}
	b.logger.Info("discord bot ready", zap.String("app_id", appID), zap.String("guild_id", b.guildID))

	<-ctx.Done()
	return nil
}
