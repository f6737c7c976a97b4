package domain

import (
	"net/url"
	"strings"
)

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceOther      TrackSource = "other"
)

// Embed colors per source.
const (
	colorYouTube    = 0xFF0000
	colorSoundCloud = 0xFF5500
	colorTwitch     = 0x9146FF
	colorOther      = 0x5865F2
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch strings.ToLower(name) {
	case "youtube", "youtube:tab", "youtubemusic":
		return TrackSourceYouTube
	case "soundcloud":
		return TrackSourceSoundCloud
	case "twitch", "twitch:stream":
		return TrackSourceTwitch
	default:
		return TrackSourceOther
	}
}

// DetectTrackSource infers the TrackSource from a webpage URL.
func DetectTrackSource(rawURL string) TrackSource {
	u, err := url.Parse(rawURL)
	if err != nil {
		return TrackSourceOther
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtu.be" || strings.HasSuffix(host, "youtube.com"):
		return TrackSourceYouTube
	case strings.HasSuffix(host, "soundcloud.com"):
		return TrackSourceSoundCloud
	case strings.HasSuffix(host, "twitch.tv"):
		return TrackSourceTwitch
	default:
		return TrackSourceOther
	}
}

// Color returns the embed color used for tracks from this source.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return colorYouTube
	case TrackSourceSoundCloud:
		return colorSoundCloud
	case TrackSourceTwitch:
		return colorTwitch
	default:
		return colorOther
	}
}
