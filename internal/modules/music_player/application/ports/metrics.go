package ports

import (
	"time"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// PlaybackMetrics records playback telemetry.
type PlaybackMetrics interface {
	SessionOpened()
	SessionClosed(reason domain.CloseReason)
	TrackStarted()
	PlaybackFailed(kind domain.ErrorKind)
	ObserveResolve(d time.Duration, err error)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) SessionOpened()                      {}
func (NopMetrics) SessionClosed(domain.CloseReason)    {}
func (NopMetrics) TrackStarted()                       {}
func (NopMetrics) PlaybackFailed(domain.ErrorKind)     {}
func (NopMetrics) ObserveResolve(time.Duration, error) {}
