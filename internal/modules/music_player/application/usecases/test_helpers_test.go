package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/session"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(1)
	testUserID         = snowflake.ID(2)
	testTextChannelID  = snowflake.ID(3)
	testVoiceChannelID = snowflake.ID(4)
)

func mockTrack(title string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID("id-" + title),
		Title:    title,
		Source:   "source-" + title,
		URL:      "https://example.com/" + title,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
	}
}

type mockConnection struct {
	guildID   snowflake.ID
	channelID snowflake.ID
}

func (c *mockConnection) GuildID() snowflake.ID   { return c.guildID }
func (c *mockConnection) ChannelID() snowflake.ID { return c.channelID }

type mockTransport struct {
	mu         sync.Mutex
	connectErr error
	playing    bool
	paused     bool
	played     []string
	volumes    []domain.Volume
	connects   int
}

func (m *mockTransport) Connect(_ context.Context, guildID, channelID snowflake.ID) (ports.VoiceConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return &mockConnection{guildID: guildID, channelID: channelID}, nil
}

func (m *mockTransport) Disconnect(_ context.Context, _ ports.VoiceConnection) error {
	return nil
}

func (m *mockTransport) PlayStream(
	_ context.Context,
	_ ports.VoiceConnection,
	source string,
	_ domain.Volume,
	_ ports.CompletionFunc,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, source)
	m.playing = true
	m.paused = false
	return nil
}

func (m *mockTransport) StopStream(_ context.Context, _ ports.VoiceConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	return nil
}

func (m *mockTransport) SetVolume(_ context.Context, _ ports.VoiceConnection, v domain.Volume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, v)
	return nil
}

func (m *mockTransport) Pause(_ context.Context, _ ports.VoiceConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	return nil
}

func (m *mockTransport) Resume(_ context.Context, _ ports.VoiceConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

func (m *mockTransport) IsPlaying(_ ports.VoiceConnection) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing && !m.paused
}

func (m *mockTransport) IsPaused(_ ports.VoiceConnection) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing && m.paused
}

type mockTrackResolver struct {
	tracks  map[string]domain.Track
	err     error
	queries []string
}

func (m *mockTrackResolver) Resolve(_ context.Context, query domain.SearchQuery) (domain.Track, error) {
	m.queries = append(m.queries, query.Text)
	if m.err != nil {
		return domain.Track{}, m.err
	}
	track, ok := m.tracks[query.Text]
	if !ok {
		return domain.Track{}, domain.ErrNoResults
	}
	return track, nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct{}

func (mockEventPublisher) PublishPlaybackStarted(domain.PlaybackStartedEvent) {}
func (mockEventPublisher) PublishPlaybackFailed(domain.PlaybackFailedEvent)   {}
func (mockEventPublisher) PublishQueueExhausted(domain.QueueExhaustedEvent)   {}
func (mockEventPublisher) PublishSessionClosed(domain.SessionClosedEvent)     {}

type mockMetrics struct {
	ports.NopMetrics
	mu       sync.Mutex
	resolves []error
}

func (m *mockMetrics) ObserveResolve(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolves = append(m.resolves, err)
}

type testEnv struct {
	registry   *session.Registry
	transport  *mockTransport
	resolver   *mockTrackResolver
	voiceState *mockVoiceStateProvider
	metrics    *mockMetrics
	service    *PlayerService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		registry:  session.NewRegistry(),
		transport: &mockTransport{},
		resolver: &mockTrackResolver{
			tracks: map[string]domain.Track{
				"song a": mockTrack("A"),
				"song b": mockTrack("B"),
			},
		},
		voiceState: &mockVoiceStateProvider{
			channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceChannelID},
		},
		metrics: &mockMetrics{},
	}

	factory := func(guildID snowflake.ID) *session.Session {
		return session.New(session.Config{
			GuildID:   guildID,
			Transport: env.transport,
			Resolver:  env.resolver,
			Publisher: mockEventPublisher{},
			Volume:    domain.DefaultVolume,
		})
	}

	env.service = NewPlayerService(
		env.registry,
		factory,
		env.voiceState,
		NewTrackLoaderService(env.resolver, env.metrics),
	)
	return env
}

func (e *testEnv) cleanup() {
	_ = e.registry.CloseAll(context.Background())
}

func (e *testEnv) play(query string) (*PlayOutput, error) {
	return e.service.Play(context.Background(), PlayInput{
		GuildID:               testGuildID,
		UserID:                testUserID,
		NotificationChannelID: testTextChannelID,
		Query:                 query,
	})
}
