package usecases

import (
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// PlaybackStatus is an alias for domain.PlaybackStatus.
type PlaybackStatus = domain.PlaybackStatus
