package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceHandshakeData is what Lavalink needs to open a voice connection.
type voiceHandshakeData struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// voiceHandshake collects VoiceStateUpdate and VoiceServerUpdate for a guild.
// Discord sends them in either order, and Lavalink rejects a partial voice
// state, so both are buffered until they are complete.
type voiceHandshake struct {
	mu        sync.Mutex
	data      voiceHandshakeData
	hasState  bool
	hasServer bool

	ready     chan struct{}
	readyOnce sync.Once
}

func newVoiceHandshake() *voiceHandshake {
	return &voiceHandshake{ready: make(chan struct{})}
}

// setState stores the voice state half and reports whether both halves are present.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data.channelID = channelID
	h.data.sessionID = sessionID
	h.hasState = true
	return h.hasServer
}

// setServer stores the voice server half and reports whether both halves are present.
func (h *voiceHandshake) setServer(token, endpoint string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data.token = token
	h.data.endpoint = endpoint
	h.hasServer = true
	return h.hasState
}

// complete returns the buffered data, resets the buffer for the next update
// and marks the handshake ready.
func (h *voiceHandshake) complete() voiceHandshakeData {
	h.mu.Lock()
	data := h.data
	h.data = voiceHandshakeData{}
	h.hasState = false
	h.hasServer = false
	h.mu.Unlock()

	h.readyOnce.Do(func() { close(h.ready) })
	return data
}

// Ready is closed once the first complete handshake was forwarded.
func (h *voiceHandshake) Ready() <-chan struct{} {
	return h.ready
}
