package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Factory creates the session for a guild.
type Factory func(guildID snowflake.ID) *Session

// Registry maps guilds to their live sessions.
// Creation is serialized per guild so a guild never has two sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*Session
	creating singleflight.Group
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[snowflake.ID]*Session),
	}
}

// Get returns the live session for the guild, if any.
func (r *Registry) Get(guildID snowflake.ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[guildID]
	if !ok || s.IsClosed() {
		return nil, false
	}
	return s, true
}

// GetOrCreate returns the live session for the guild, creating one with
// factory if there is none. Concurrent callers for the same guild share a
// single factory call.
func (r *Registry) GetOrCreate(guildID snowflake.ID, factory Factory) *Session {
	if s, ok := r.Get(guildID); ok {
		return s
	}

	v, _, _ := r.creating.Do(guildID.String(), func() (any, error) {
		if s, ok := r.Get(guildID); ok {
			return s, nil
		}

		s := factory(guildID)

		r.mu.Lock()
		r.sessions[guildID] = s
		r.mu.Unlock()

		go r.watch(s)

		slog.Debug("registered session", "guild", guildID, "session", s.ID())
		return s, nil
	})

	return v.(*Session)
}

// watch removes the session once it has been torn down.
func (r *Registry) watch(s *Session) {
	<-s.Done()
	r.Remove(s.GuildID(), s)
}

// Remove deletes the guild's entry if it still refers to s.
// A nil s removes whatever entry exists.
func (r *Registry) Remove(guildID snowflake.ID, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[guildID]
	if !ok || (s != nil && current != s) {
		return
	}
	delete(r.sessions, guildID)

	slog.Debug("removed session", "guild", guildID, "session", current.ID())
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll tears down every session concurrently. A failing session does not
// keep the others from closing.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	var g errgroup.Group
	for _, s := range sessions {
		g.Go(func() error {
			err := s.Close(ctx, domain.CloseShutdown)
			if errors.Is(err, domain.ErrSessionClosed) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
