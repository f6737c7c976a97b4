package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/session"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/tunebot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/tunebot/internal/modules/music_player/presentation/discord"
)

const (
	// nodeConnectTimeout bounds connecting to the Lavalink node during Init.
	nodeConnectTimeout = 10 * time.Second
	// shutdownTimeout bounds closing every session on shutdown.
	shutdownTimeout = 15 * time.Second
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	prefixHandlers  *discord.PrefixHandlers
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	player          *usecases.PlayerService

	eventBus *infrastructure.ChannelEventBus
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return m.commandHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.MessageCreate) {
			m.prefixHandlers.HandleMessageCreate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires a connected Discord session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), nodeConnectTimeout)
	defer cancel()

	// Event bus carries session events to the notification handler
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	// Lavalink is the voice transport regardless of the resolver
	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(ctx, deps.Session, infrastructure.LavalinkConfig{
		NodeName:     m.config.LavalinkNodeName,
		Address:      m.config.LavalinkAddress,
		Password:     m.config.LavalinkPassword,
		Secure:       m.config.LavalinkSecure,
		SearchSource: m.config.searchSource(),
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Create infrastructure
	resolver := newTrackResolver(m.config, lavalinkAdapter, lavalinkAdapter)
	metrics := infrastructure.NewPrometheusMetrics(deps.Metrics)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfoProv := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	// Create services
	registry := session.NewRegistry()
	newSession := func(guildID snowflake.ID) *session.Session {
		return session.New(session.Config{
			GuildID:                guildID,
			Transport:              lavalinkAdapter,
			Resolver:               resolver,
			Publisher:              m.eventBus,
			Metrics:                metrics,
			Volume:                 m.config.volume(),
			MaxConsecutiveFailures: m.config.MaxConsecutiveFailures,
		})
	}
	trackLoader := usecases.NewTrackLoaderService(resolver, metrics)
	m.player = usecases.NewPlayerService(registry, newSession, voiceState, trackLoader)

	// Register application event handlers
	application.NewNotificationEventHandler(
		m.eventBus,
		notifier,
		userInfoProv,
		m.config.MaxConsecutiveFailures,
	).Start()

	// Create presentation handlers
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}
	m.commandHandlers = discord.NewCommandHandlers(m.player)
	m.prefixHandlers = discord.NewPrefixHandlers(deps.Config.CommandPrefix, m.player)
	m.eventHandlers = discord.NewEventHandlers(botID, m.player)

	slog.Info("music_player module initialized",
		"resolver", m.config.TrackResolver,
		"search_source", m.config.SearchSource,
	)

	return nil
}

// newTrackResolver selects the configured resolver and applies the shared rate limit.
// yt-dlp stream URLs are encoded through encoder before they reach a session.
func newTrackResolver(
	cfg *Config,
	lavalink ports.TrackResolver,
	encoder infrastructure.StreamEncoder,
) ports.TrackResolver {
	var resolver ports.TrackResolver
	switch cfg.TrackResolver {
	case resolverYtdlp:
		resolver = infrastructure.NewYtdlpResolver(infrastructure.YtdlpConfig{
			Proxy:        cfg.YtdlpProxy,
			StreamURLTTL: cfg.StreamURLTTL,
			SearchSource: cfg.searchSource(),
		})
		resolver = infrastructure.NewStreamEncodingResolver(resolver, encoder)
	default:
		resolver = lavalink
	}

	if cfg.ResolveRate > 0 {
		resolver = infrastructure.NewRateLimitedResolver(resolver, cfg.ResolveRate, cfg.ResolveBurst)
	}
	return resolver
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	var err error

	// Close sessions first so their final events reach the bus
	if m.player != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = m.player.Shutdown(ctx)
		cancel()
	}

	// Close event bus
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return err
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
