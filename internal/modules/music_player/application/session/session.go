package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultMailboxSize            = 64
	DefaultMaxConsecutiveFailures = 3
)

// Config holds the collaborators and settings of a Session.
type Config struct {
	GuildID   snowflake.ID
	Transport ports.VoiceTransport
	Resolver  ports.TrackResolver
	Publisher ports.EventPublisher
	Metrics   ports.PlaybackMetrics

	Volume                 domain.Volume
	MaxConsecutiveFailures int
	MailboxSize            int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// EnqueueResult describes where an enqueued track landed.
type EnqueueResult struct {
	// Position is the 1-based position in the queue, or 0 if the track
	// became current immediately.
	Position int
	// WasIdle is true if nothing was playing when the track was enqueued.
	WasIdle bool
}

// Snapshot is a point-in-time copy of a session's state.
type Snapshot struct {
	GuildID               snowflake.ID
	Status                domain.PlaybackStatus
	Current               *domain.Track
	Queue                 []domain.Track
	Volume                domain.Volume
	VoiceChannelID        snowflake.ID
	NotificationChannelID snowflake.ID
	ConsecutiveFailures   int
}

// Session owns one guild's voice connection, queue and current track.
//
// All state is confined to a single goroutine that drains a mailbox of
// closures. Public methods and transport callbacks post onto the mailbox and
// never touch state directly. Track resolution runs on separate goroutines and
// only its result is posted back.
type Session struct {
	id      string
	guildID snowflake.ID
	log     *slog.Logger

	transport   ports.VoiceTransport
	resolver    ports.TrackResolver
	publisher   ports.EventPublisher
	metrics     ports.PlaybackMetrics
	maxFailures int
	now         func() time.Time

	mailbox  chan func()
	ctx      context.Context // cancelled on close, aborts in-flight resolution
	cancel   context.CancelFunc
	done     chan struct{}
	isClosed atomic.Bool

	// Owned by the run goroutine.
	state  *domain.PlayerState
	conn   ports.VoiceConnection
	closed bool
}

// New creates a Session and starts its run goroutine.
func New(cfg Config) *Session {
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultMailboxSize
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if cfg.Metrics == nil {
		cfg.Metrics = ports.NopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:          id,
		guildID:     cfg.GuildID,
		log:         slog.With("guild", cfg.GuildID, "session", id),
		transport:   cfg.Transport,
		resolver:    cfg.Resolver,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		maxFailures: cfg.MaxConsecutiveFailures,
		now:         cfg.Now,
		mailbox:     make(chan func(), cfg.MailboxSize),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		state:       domain.NewPlayerState(cfg.GuildID, cfg.Volume),
	}

	s.metrics.SessionOpened()
	go s.run()

	s.log.Debug("created session")

	return s
}

// ID returns the unique ID of this session instance.
func (s *Session) ID() string {
	return s.id
}

// GuildID returns the guild this session belongs to.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// Done returns a channel that is closed once the session goroutine exited
// after teardown.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsClosed returns true once the session has been torn down.
func (s *Session) IsClosed() bool {
	return s.isClosed.Load()
}

func (s *Session) run() {
	defer close(s.done)
	for fn := range s.mailbox {
		fn()
		if s.closed {
			return
		}
	}
}

// call runs fn on the session goroutine and waits for its result.
func (s *Session) call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	msg := func() {
		if s.closed {
			result <- domain.ErrSessionClosed
			return
		}
		// The caller gave up while the message was queued.
		if err := ctx.Err(); err != nil {
			result <- err
			return
		}
		result <- fn()
	}

	select {
	case s.mailbox <- msg:
	case <-s.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-s.done:
		// fn may have torn the session down itself.
		select {
		case err := <-result:
			return err
		default:
			return domain.ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post schedules fn on the session goroutine without waiting.
// It is dropped if the session is closed.
func (s *Session) post(fn func()) {
	select {
	case s.mailbox <- func() {
		if !s.closed {
			fn()
		}
	}:
	case <-s.done:
	}
}

// Connect joins the voice channel unless already connected and sets the
// channel that receives notifications. Pending tracks start playing.
func (s *Session) Connect(ctx context.Context, voiceChannelID, notificationChannelID snowflake.ID) error {
	return s.call(ctx, func() error {
		if notificationChannelID != 0 {
			s.state.SetNotificationChannelID(notificationChannelID)
		}

		if s.conn != nil {
			return nil
		}

		conn, err := s.transport.Connect(ctx, s.guildID, voiceChannelID)
		if err != nil {
			return domain.NewError(
				domain.KindTransport,
				fmt.Errorf("failed to connect to voice channel: %w", err),
			)
		}
		s.conn = conn
		s.state.SetVoiceChannelID(conn.ChannelID())

		s.log.Info("connected to voice channel", "channel", conn.ChannelID())

		s.advance()
		return nil
	})
}

// Enqueue appends track to the queue. If the session is idle and connected
// the track starts playing immediately.
func (s *Session) Enqueue(ctx context.Context, track domain.Track) (EnqueueResult, error) {
	var result EnqueueResult
	err := s.call(ctx, func() error {
		s.state.ResetFailures()

		position, shouldAdvance := s.state.Enqueue(track)
		result = EnqueueResult{Position: position, WasIdle: shouldAdvance}

		s.log.Debug("enqueued track", "track", track.Title, "position", position)

		if shouldAdvance {
			s.advance()
			result.Position = s.queuePosition(track.ID)
		}
		return nil
	})
	return result, err
}

// queuePosition returns the 1-based position of the track at the tail of the
// queue, or 0 if it already left the queue to play or refresh.
func (s *Session) queuePosition(id domain.TrackID) int {
	if tail, ok := s.state.Queue.Tail(); ok && tail.ID == id {
		return s.state.Queue.Len()
	}
	return 0
}

// Pause suspends the current track.
func (s *Session) Pause(ctx context.Context) error {
	return s.call(ctx, func() error {
		if err := s.state.Pause(); err != nil {
			return err
		}
		if err := s.transport.Pause(ctx, s.conn); err != nil {
			_ = s.state.Resume()
			return domain.NewError(domain.KindTransport, fmt.Errorf("failed to pause: %w", err))
		}
		return nil
	})
}

// Resume continues a paused track.
func (s *Session) Resume(ctx context.Context) error {
	return s.call(ctx, func() error {
		if err := s.state.Resume(); err != nil {
			return err
		}
		if err := s.transport.Resume(ctx, s.conn); err != nil {
			_ = s.state.Pause()
			return domain.NewError(domain.KindTransport, fmt.Errorf("failed to resume: %w", err))
		}
		return nil
	})
}

// Skip terminates the current track. Its completion advances the queue.
// It returns the skipped track.
func (s *Session) Skip(ctx context.Context) (domain.Track, error) {
	var skipped domain.Track
	err := s.call(ctx, func() error {
		if err := s.state.CanSkip(); err != nil {
			return err
		}
		current, _ := s.state.Current()
		skipped = current.Track

		// The stream already ended and its completion is queued behind us.
		if !s.transport.IsPlaying(s.conn) && !s.transport.IsPaused(s.conn) {
			return nil
		}

		if err := s.transport.StopStream(ctx, s.conn); err != nil {
			return domain.NewError(domain.KindTransport, fmt.Errorf("failed to skip: %w", err))
		}
		return nil
	})
	return skipped, err
}

// SetVolume stores the volume and applies it to the live stream, if any.
func (s *Session) SetVolume(ctx context.Context, volume domain.Volume) error {
	return s.call(ctx, func() error {
		s.state.SetVolume(volume)

		if _, ok := s.state.Current(); !ok || s.conn == nil {
			return nil
		}
		if err := s.transport.SetVolume(ctx, s.conn, volume); err != nil {
			return domain.NewError(domain.KindTransport, fmt.Errorf("failed to set volume: %w", err))
		}
		return nil
	})
}

// Stop clears the queue, releases the voice connection and closes the
// session. Stopping a closed session returns domain.ErrSessionClosed.
func (s *Session) Stop(ctx context.Context) error {
	return s.Close(ctx, domain.CloseStopped)
}

// HandleDisconnect closes the session after its voice connection dropped.
func (s *Session) HandleDisconnect(ctx context.Context) error {
	return s.Close(ctx, domain.CloseDisconnected)
}

// Close tears the session down for the given reason.
func (s *Session) Close(ctx context.Context, reason domain.CloseReason) error {
	return s.call(ctx, func() error {
		s.teardown(ctx, reason)
		return nil
	})
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.call(ctx, func() error {
		snap = Snapshot{
			GuildID:               s.guildID,
			Status:                s.state.Status(),
			Queue:                 s.state.Queue.List(),
			Volume:                s.state.Volume(),
			VoiceChannelID:        s.state.VoiceChannelID(),
			NotificationChannelID: s.state.NotificationChannelID(),
			ConsecutiveFailures:   s.state.ConsecutiveFailures(),
		}
		if current, ok := s.state.Current(); ok {
			track := current.Track
			snap.Current = &track
		}
		return nil
	})
	return snap, err
}

// advance starts the next playable queued track. It must run on the session
// goroutine and only acts when no track is current.
func (s *Session) advance() {
	for {
		if s.state.CanAdvance() != nil || s.halted() {
			return
		}

		next, ok := s.state.Queue.Pop()
		if !ok {
			return
		}

		if next.NeedsRefresh(s.now()) {
			if s.beginRefresh(next) {
				return
			}
			continue
		}

		s.start(next)
	}
}

// start makes track current and hands it to the transport.
func (s *Session) start(track domain.Track) bool {
	seq, err := s.state.Begin(track)
	if err != nil {
		s.log.Warn("refused to start track", "track", track.Title, "error", err)
		return false
	}

	err = s.transport.PlayStream(s.ctx, s.conn, track.Source, s.state.Volume(), s.completion(seq))
	if err != nil {
		s.state.End(seq)
		s.fail(track, domain.NewError(domain.KindTransport, fmt.Errorf("failed to start stream: %w", err)))
		return false
	}

	s.log.Info("started track", "track", track.Title, "seq", seq)
	s.metrics.TrackStarted()
	s.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
		GuildID:               s.guildID,
		Track:                 track,
		NotificationChannelID: s.state.NotificationChannelID(),
	})
	return true
}

// completion returns the one-shot callback handed to the transport.
func (s *Session) completion(seq uint64) ports.CompletionFunc {
	var once sync.Once
	return func(reason domain.TrackEndReason) {
		once.Do(func() {
			s.post(func() { s.handleTrackEnd(seq, reason) })
		})
	}
}

func (s *Session) handleTrackEnd(seq uint64, reason domain.TrackEndReason) {
	current, ok := s.state.Current()
	if !ok || !s.state.End(seq) {
		s.log.Debug("ignored stale track end", "seq", seq, "reason", reason)
		return
	}

	s.log.Debug("track ended", "track", current.Track.Title, "seq", seq, "reason", reason)

	if reason.IsFailure() {
		s.fail(current.Track, domain.NewError(
			domain.KindTransport,
			fmt.Errorf("stream of %q ended with %s", current.Track.Title, reason),
		))
	} else {
		s.state.ResetFailures()
	}

	s.advanceAfterEnd()
}

// beginRefresh re-resolves an expired track off the session goroutine.
// It returns false if resolution could not be started.
func (s *Session) beginRefresh(track domain.Track) bool {
	raw, err := track.RefreshQuery()
	if err == nil {
		var query domain.SearchQuery
		query, err = domain.ParseSearchQuery(raw)
		if err == nil {
			s.state.SetPreparing(true)
			go s.refresh(s.ctx, track, query)
			return true
		}
	}

	s.fail(track, domain.NewError(domain.KindResolution, err))
	return false
}

func (s *Session) refresh(ctx context.Context, track domain.Track, query domain.SearchQuery) {
	started := s.now()
	fresh, err := s.resolver.Resolve(ctx, query)
	s.metrics.ObserveResolve(s.now().Sub(started), err)

	s.post(func() { s.finishRefresh(track, fresh, err) })
}

func (s *Session) finishRefresh(track domain.Track, fresh domain.Track, err error) {
	s.state.SetPreparing(false)

	if err == nil {
		err = fresh.Validate()
	}
	if err != nil {
		s.fail(track, fmt.Errorf("failed to refresh %q: %w", track.Title, err))
		s.advanceAfterEnd()
		return
	}

	if !s.start(track.WithRefreshedSource(fresh)) {
		s.advanceAfterEnd()
	}
}

// advanceAfterEnd advances and reports when nothing is left to play.
func (s *Session) advanceAfterEnd() {
	s.advance()

	if _, ok := s.state.Current(); ok || s.state.IsPreparing() {
		return
	}
	if s.state.Queue.IsEmpty() {
		s.publisher.PublishQueueExhausted(domain.QueueExhaustedEvent{
			GuildID:               s.guildID,
			NotificationChannelID: s.state.NotificationChannelID(),
		})
	}
}

// fail reports a track that could not be played. Transport failures count
// toward the consecutive failure limit.
func (s *Session) fail(track domain.Track, err error) {
	kind := domain.KindOf(err)
	halted := false
	if kind == domain.KindTransport {
		halted = s.state.RecordFailure() >= s.maxFailures
	}

	s.log.Warn("failed to play track",
		"track", track.Title,
		"kind", kind,
		"halted", halted,
		"error", err,
	)
	s.metrics.PlaybackFailed(kind)

	if halted {
		err = fmt.Errorf("%w: %w", domain.ErrRepeatedFailures, err)
	}
	s.publisher.PublishPlaybackFailed(domain.PlaybackFailedEvent{
		GuildID:               s.guildID,
		NotificationChannelID: s.state.NotificationChannelID(),
		Track:                 track,
		Err:                   err,
		Halted:                halted,
	})
}

func (s *Session) halted() bool {
	return s.state.ConsecutiveFailures() >= s.maxFailures
}

func (s *Session) teardown(ctx context.Context, reason domain.CloseReason) {
	s.closed = true
	s.isClosed.Store(true)
	s.cancel()

	dropped := s.state.Queue.Clear()
	_, hadCurrent := s.state.Current()

	if s.conn != nil {
		if hadCurrent {
			if err := s.transport.StopStream(ctx, s.conn); err != nil {
				s.log.Warn("failed to stop stream", "error", err)
			}
		}
		if err := s.transport.Disconnect(ctx, s.conn); err != nil {
			s.log.Warn("failed to disconnect", "error", err)
		}
	}

	notificationChannelID := s.state.NotificationChannelID()
	s.state.Reset()
	s.conn = nil

	s.log.Info("closed session", "reason", reason, "dropped_tracks", dropped)

	s.metrics.SessionClosed(reason)
	s.publisher.PublishSessionClosed(domain.SessionClosedEvent{
		GuildID:               s.guildID,
		NotificationChannelID: notificationChannelID,
		Reason:                reason,
	})
}
