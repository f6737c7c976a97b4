package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(100)
	testVoiceChannelID = snowflake.ID(200)
	testTextChannelID  = snowflake.ID(300)
)

func testTrack(name string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID("id-" + name),
		Title:    name,
		Source:   "source-" + name,
		URL:      "https://example.com/" + name,
		Duration: 3 * time.Minute,
	}
}

type mockConnection struct {
	guildID   snowflake.ID
	channelID snowflake.ID
}

func (c *mockConnection) GuildID() snowflake.ID   { return c.guildID }
func (c *mockConnection) ChannelID() snowflake.ID { return c.channelID }

// mockTransport records calls and hands out completion callbacks.
// StopStream fires the completion of the live stream synchronously.
type mockTransport struct {
	mu sync.Mutex

	connectErr error
	playErr    error
	stopErr    error
	pauseErr   error
	resumeErr  error
	volumeErr  error

	calls       []string
	played      []string
	volumes     []domain.Volume
	completions []ports.CompletionFunc
	playing     bool
	paused      bool
}

func (m *mockTransport) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockTransport) Connect(
	_ context.Context,
	guildID, channelID snowflake.ID,
) (ports.VoiceConnection, error) {
	m.record("connect")
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return &mockConnection{guildID: guildID, channelID: channelID}, nil
}

func (m *mockTransport) Disconnect(_ context.Context, _ ports.VoiceConnection) error {
	m.record("disconnect")
	return nil
}

func (m *mockTransport) PlayStream(
	_ context.Context,
	_ ports.VoiceConnection,
	source string,
	volume domain.Volume,
	onComplete ports.CompletionFunc,
) error {
	m.record("play:" + source)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, source)
	m.volumes = append(m.volumes, volume)
	m.completions = append(m.completions, onComplete)
	m.playing = true
	m.paused = false
	return nil
}

func (m *mockTransport) StopStream(_ context.Context, _ ports.VoiceConnection) error {
	m.record("stop")
	if m.stopErr != nil {
		return m.stopErr
	}
	m.finish(domain.TrackEndStopped)
	return nil
}

func (m *mockTransport) SetVolume(_ context.Context, _ ports.VoiceConnection, v domain.Volume) error {
	m.record(fmt.Sprintf("volume:%.2f", float64(v)))
	return m.volumeErr
}

func (m *mockTransport) Pause(_ context.Context, _ ports.VoiceConnection) error {
	m.record("pause")
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	return nil
}

func (m *mockTransport) Resume(_ context.Context, _ ports.VoiceConnection) error {
	m.record("resume")
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
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

// finish ends the live stream with reason, as the transport would.
func (m *mockTransport) finish(reason domain.TrackEndReason) {
	m.mu.Lock()
	if !m.playing || len(m.completions) == 0 {
		m.mu.Unlock()
		return
	}
	complete := m.completions[len(m.completions)-1]
	m.playing = false
	m.paused = false
	m.mu.Unlock()

	complete(reason)
}

func (m *mockTransport) completion(i int) ports.CompletionFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completions[i]
}

func (m *mockTransport) volume(i int) domain.Volume {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volumes[i]
}

func (m *mockTransport) callList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.calls))
	copy(result, m.calls)
	return result
}

func (m *mockTransport) playedList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.played))
	copy(result, m.played)
	return result
}

func (m *mockTransport) count(call string) int {
	n := 0
	for _, c := range m.callList() {
		if c == call {
			n++
		}
	}
	return n
}

type resolveResult struct {
	track domain.Track
	err   error
}

// mockResolver answers from a fixed table. If gate is set, Resolve blocks
// until it is closed or the context is cancelled.
type mockResolver struct {
	mu      sync.Mutex
	results map[string]resolveResult
	gate    chan struct{}
	queries []string
	ctxErrs []error
}

func (m *mockResolver) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query.Text)
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if ctx.Err() != nil {
		return domain.Track{}, ctx.Err()
	}

	result, ok := m.results[query.Text]
	if !ok {
		return domain.Track{}, domain.ErrNoResults
	}
	return result.track, result.err
}

func (m *mockResolver) resolvedContextErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]error, len(m.ctxErrs))
	copy(result, m.ctxErrs)
	return result
}

type mockEventPublisher struct {
	mu        sync.Mutex
	started   []domain.PlaybackStartedEvent
	failed    []domain.PlaybackFailedEvent
	exhausted []domain.QueueExhaustedEvent
	closed    []domain.SessionClosedEvent
}

func (m *mockEventPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, event)
}

func (m *mockEventPublisher) PublishPlaybackFailed(event domain.PlaybackFailedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, event)
}

func (m *mockEventPublisher) PublishQueueExhausted(event domain.QueueExhaustedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted = append(m.exhausted, event)
}

func (m *mockEventPublisher) PublishSessionClosed(event domain.SessionClosedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, event)
}

func (m *mockEventPublisher) failedEvents() []domain.PlaybackFailedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.PlaybackFailedEvent, len(m.failed))
	copy(result, m.failed)
	return result
}

func (m *mockEventPublisher) counts() (started, failed, exhausted, closed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.started), len(m.failed), len(m.exhausted), len(m.closed)
}

type testFixture struct {
	transport *mockTransport
	resolver  *mockResolver
	publisher *mockEventPublisher
	now       time.Time
}

func newFixture() *testFixture {
	return &testFixture{
		transport: &mockTransport{},
		resolver:  &mockResolver{results: make(map[string]resolveResult)},
		publisher: &mockEventPublisher{},
		now:       time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *testFixture) config(guildID snowflake.ID) Config {
	return Config{
		GuildID:   guildID,
		Transport: f.transport,
		Resolver:  f.resolver,
		Publisher: f.publisher,
		Volume:    domain.DefaultVolume,
		Now:       func() time.Time { return f.now },
	}
}

func (f *testFixture) newSession(t *testing.T) *Session {
	t.Helper()
	s := New(f.config(testGuildID))
	t.Cleanup(func() {
		_ = s.Stop(context.Background())
	})
	return s
}

func (f *testFixture) newConnectedSession(t *testing.T) *Session {
	t.Helper()
	s := f.newSession(t)
	if err := s.Connect(context.Background(), testVoiceChannelID, testTextChannelID); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return s
}

func mustSnapshot(t *testing.T, s *Session) Snapshot {
	t.Helper()
	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("failed to snapshot: %v", err)
	}
	return snap
}

func mustEnqueue(t *testing.T, s *Session, tracks ...domain.Track) {
	t.Helper()
	for _, track := range tracks {
		if _, err := s.Enqueue(context.Background(), track); err != nil {
			t.Fatalf("failed to enqueue %q: %v", track.Title, err)
		}
	}
}

func queueTitles(snap Snapshot) []string {
	result := make([]string, len(snap.Queue))
	for i, track := range snap.Queue {
		result[i] = track.Title
	}
	return result
}

func currentTitle(snap Snapshot) string {
	if snap.Current == nil {
		return ""
	}
	return snap.Current.Title
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
