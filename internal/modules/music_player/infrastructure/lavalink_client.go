package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.VoiceTransport = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
)

// lavalinkConnection is the VoiceConnection handed out by LavalinkAdapter.
type lavalinkConnection struct {
	guildID   snowflake.ID
	channelID snowflake.ID
}

func (c *lavalinkConnection) GuildID() snowflake.ID   { return c.guildID }
func (c *lavalinkConnection) ChannelID() snowflake.ID { return c.channelID }

// activeStream is the track a guild's player was last told to play.
type activeStream struct {
	encoded    string
	paused     bool
	onComplete ports.CompletionFunc
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName     string
	Address      string
	Password     string
	Secure       bool
	SearchSource domain.SearchSource
}

// LavalinkAdapter wraps DisGoLink to implement the voice transport and the
// default track resolver.
type LavalinkAdapter struct {
	link         disgolink.Client
	session      *discordgo.Session
	botID        snowflake.ID
	searchSource domain.SearchSource

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake

	streamMu sync.Mutex
	streams  map[snowflake.ID]*activeStream
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	if config.SearchSource == "" {
		config.SearchSource = domain.SourceYouTube
	}
	if config.NodeName == "" {
		config.NodeName = "main"
	}

	adapter := &LavalinkAdapter{
		session:      session,
		botID:        botID,
		searchSource: config.SearchSource,
		handshakes:   make(map[snowflake.ID]*voiceHandshake),
		streams:      make(map[snowflake.ID]*activeStream),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     config.NodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// Close disconnects from all Lavalink nodes.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// --- VoiceTransport ---

// Connect joins a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) Connect(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (ports.VoiceConnection, error) {
	handshake := newVoiceHandshake()
	c.handshakeMu.Lock()
	c.handshakes[guildID] = handshake
	c.handshakeMu.Unlock()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		c.clearHandshake(guildID)
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-handshake.Ready():
		return &lavalinkConnection{guildID: guildID, channelID: channelID}, nil
	case <-ctx.Done():
		c.leave(guildID)
		return nil, fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		c.leave(guildID)
		return nil, errors.New("timeout waiting for voice connection")
	}
}

// Disconnect destroys the guild's player and leaves the voice channel.
// A pending completion callback is dropped.
func (c *LavalinkAdapter) Disconnect(ctx context.Context, conn ports.VoiceConnection) error {
	guildID := conn.GuildID()
	c.takeStream(guildID)

	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	if err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// PlayStream starts source, an encoded Lavalink track, on the guild's player.
// Direct stream URLs are encoded at resolve time by StreamEncodingResolver.
func (c *LavalinkAdapter) PlayStream(
	ctx context.Context,
	conn ports.VoiceConnection,
	source string,
	volume domain.Volume,
	onComplete ports.CompletionFunc,
) error {
	guildID := conn.GuildID()

	if isStreamURL(source) {
		return errors.New("stream URL must be encoded before playing")
	}
	encoded := source

	// Registered before the update so an immediate end event finds it.
	c.streamMu.Lock()
	c.streams[guildID] = &activeStream{encoded: encoded, onComplete: onComplete}
	c.streamMu.Unlock()

	player := c.link.Player(guildID)
	err := player.Update(ctx,
		lavalink.WithEncodedTrack(encoded),
		lavalink.WithVolume(volume.Lavalink()),
		lavalink.WithPaused(false),
	)
	if err != nil {
		c.takeStream(guildID)
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// StopStream stops the current track. Its completion fires with reason stopped.
func (c *LavalinkAdapter) StopStream(ctx context.Context, conn ports.VoiceConnection) error {
	player := c.link.Player(conn.GuildID())

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// SetVolume changes the volume of the live stream.
func (c *LavalinkAdapter) SetVolume(ctx context.Context, conn ports.VoiceConnection, volume domain.Volume) error {
	player := c.link.Player(conn.GuildID())

	if err := player.Update(ctx, lavalink.WithVolume(volume.Lavalink())); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, conn ports.VoiceConnection) error {
	return c.setPaused(ctx, conn.GuildID(), true)
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, conn ports.VoiceConnection) error {
	return c.setPaused(ctx, conn.GuildID(), false)
}

func (c *LavalinkAdapter) setPaused(ctx context.Context, guildID snowflake.ID, paused bool) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		if paused {
			return fmt.Errorf("failed to pause playback: %w", err)
		}
		return fmt.Errorf("failed to resume playback: %w", err)
	}

	c.streamMu.Lock()
	if stream, ok := c.streams[guildID]; ok {
		stream.paused = paused
	}
	c.streamMu.Unlock()

	return nil
}

// IsPlaying returns true if a stream is live and not paused.
func (c *LavalinkAdapter) IsPlaying(conn ports.VoiceConnection) bool {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	stream, ok := c.streams[conn.GuildID()]
	return ok && !stream.paused
}

// IsPaused returns true if a stream is live and paused.
func (c *LavalinkAdapter) IsPaused(conn ports.VoiceConnection) bool {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	stream, ok := c.streams[conn.GuildID()]
	return ok && stream.paused
}

// takeStream removes and returns the guild's active stream.
func (c *LavalinkAdapter) takeStream(guildID snowflake.ID) (*activeStream, bool) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	stream, ok := c.streams[guildID]
	delete(c.streams, guildID)
	return stream, ok
}

// takeStreamIf removes the guild's active stream if it plays encoded.
func (c *LavalinkAdapter) takeStreamIf(guildID snowflake.ID, encoded string) (*activeStream, bool) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	stream, ok := c.streams[guildID]
	if !ok || stream.encoded != encoded {
		return nil, false
	}
	delete(c.streams, guildID)
	return stream, true
}

func (c *LavalinkAdapter) leave(guildID snowflake.ID) {
	c.clearHandshake(guildID)
	if err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
	}
}

// --- TrackResolver ---

// Resolve loads the query through Lavalink and returns the first track.
func (c *LavalinkAdapter) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error) {
	node := c.link.BestNode()
	if node == nil {
		return domain.Track{}, fmt.Errorf("%w: no available Lavalink node", domain.ErrSourceUnavailable)
	}

	result, err := node.LoadTracks(ctx, query.LavalinkIdentifier(c.searchSource))
	if err != nil {
		return domain.Track{}, domain.NewError(
			domain.KindResolution,
			fmt.Errorf("failed to load tracks: %w", err),
		)
	}

	track, err := firstTrack(result)
	if err != nil {
		return domain.Track{}, err
	}

	resolved := convertTrack(track, query.Text)
	if err := resolved.Validate(); err != nil {
		return domain.Track{}, err
	}
	return resolved, nil
}

// EncodeStream loads a direct stream URL through Lavalink and returns the
// encoded track to play.
func (c *LavalinkAdapter) EncodeStream(ctx context.Context, url string) (string, error) {
	node := c.link.BestNode()
	if node == nil {
		return "", errors.New("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to load stream: %w", err)
	}
	track, err := firstTrack(result)
	if err != nil {
		return "", err
	}
	return track.Encoded, nil
}

// firstTrack picks the track to play from a load result: the track itself,
// the first search result, or the selected (else first) playlist entry.
func firstTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	if result == nil {
		return lavalink.Track{}, domain.ErrNoResults
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil

	case lavalink.Search:
		if len(data) == 0 {
			return lavalink.Track{}, domain.ErrNoResults
		}
		return data[0], nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return lavalink.Track{}, domain.ErrNoResults
		}
		if i := data.Info.SelectedTrack; i >= 0 && i < len(data.Tracks) {
			return data.Tracks[i], nil
		}
		return data.Tracks[0], nil

	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, data.Message)

	default:
		return lavalink.Track{}, domain.ErrNoResults
	}
}

// convertTrack converts a Lavalink track to a domain track.
func convertTrack(track lavalink.Track, query string) domain.Track {
	info := track.Info

	return domain.Track{
		ID:         domain.TrackID(uuid.NewString()),
		Title:      info.Title,
		Source:     track.Encoded,
		URL:        derefString(info.URI),
		Duration:   time.Duration(info.Length) * time.Millisecond,
		Artist:     info.Author,
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		Identifier: info.Identifier,
		IsStream:   info.IsStream,
		Query:      query,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isStreamURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// --- Discord voice events ---

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	handshake := c.handshake(guildID)
	if handshake.setServer(event.Token, event.Endpoint) {
		c.forwardHandshake(guildID, handshake)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	// Only handle updates for the bot itself
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// Disconnects need no voice server update.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearHandshake(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	handshake := c.handshake(guildID)
	if handshake.setState(&channelID, event.SessionID) {
		c.forwardHandshake(guildID, handshake)
	}
}

// handshake returns the guild's voice handshake, creating one if needed.
func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	h, ok := c.handshakes[guildID]
	if !ok {
		h = newVoiceHandshake()
		c.handshakes[guildID] = h
	}
	return h
}

func (c *LavalinkAdapter) clearHandshake(guildID snowflake.ID) {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()
	delete(c.handshakes, guildID)
}

// forwardHandshake sends the buffered voice events to Lavalink in order.
func (c *LavalinkAdapter) forwardHandshake(guildID snowflake.ID, handshake *voiceHandshake) {
	data := handshake.complete()

	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", data.channelID,
		"hasSessionID", data.sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, data.channelID, data.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, data.token, data.endpoint)
}

// --- Lavalink events ---

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	stream, ok := c.takeStreamIf(player.GuildID(), event.Track.Encoded)
	if !ok {
		// Already completed, e.g. after a stuck track was abandoned.
		return
	}
	stream.onComplete(convertEndReason(event.Reason))
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

// onTrackStuck abandons the stuck track as failed and stops the player.
func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	stream, ok := c.takeStreamIf(player.GuildID(), event.Track.Encoded)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		slog.Warn("failed to stop stuck track", "guild", player.GuildID(), "error", err)
	}

	stream.onComplete(domain.TrackEndLoadFailed)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}
