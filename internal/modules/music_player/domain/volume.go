package domain

import "math"

// Volume is a playback level in [0.0, 1.0].
type Volume float64

const (
	// DefaultVolume is the level a new session starts at.
	DefaultVolume Volume = 0.5

	minVolumePercent = 0
	maxVolumePercent = 100
)

// VolumeFromPercent converts a user-facing 0..100 percentage to a Volume.
func VolumeFromPercent(percent int) (Volume, error) {
	if percent < minVolumePercent || percent > maxVolumePercent {
		return 0, ErrVolumeOutOfRange
	}
	return Volume(float64(percent) / 100), nil
}

// NewVolume validates a raw level.
func NewVolume(level float64) (Volume, error) {
	if math.IsNaN(level) || level < 0 || level > 1 {
		return 0, ErrVolumeOutOfRange
	}
	return Volume(level), nil
}

// Percent returns the volume as a 0..100 percentage.
func (v Volume) Percent() int {
	return int(math.Round(float64(v) * 100))
}

// Lavalink returns the volume on Lavalink's scale, where 100 is unmodified output.
func (v Volume) Lavalink() int {
	return v.Percent()
}
