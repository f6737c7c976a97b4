package domain

import "errors"

// ErrorKind classifies an error by how the bot should react to it.
type ErrorKind int

const (
	// KindUnknown is reported for errors that carry no classification.
	KindUnknown ErrorKind = iota
	// KindUserInput is a problem with what the caller asked for. No state changes.
	KindUserInput
	// KindResolution is a search or lookup failure.
	KindResolution
	// KindTransport is a voice connection or stream failure.
	KindTransport
	// KindInternalState is an invalid state transition, e.g. pause while idle.
	KindInternalState
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUserInput:
		return "user_input"
	case KindResolution:
		return "resolution"
	case KindTransport:
		return "transport"
	case KindInternalState:
		return "internal_state"
	default:
		return "unknown"
	}
}

// Error attaches an ErrorKind to an underlying error.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Error returns the message of the wrapped error.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind. Returns nil if err is nil.
func NewError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// User input errors.
var (
	ErrVolumeOutOfRange = NewError(KindUserInput, errors.New("volume must be between 0 and 100"))
	ErrEmptyQuery       = NewError(KindUserInput, errors.New("query must not be empty"))
)

// Resolution errors.
var (
	ErrNoResults         = NewError(KindResolution, errors.New("no results found"))
	ErrMalformedMetadata = NewError(KindResolution, errors.New("resolver returned malformed metadata"))
	ErrSourceUnavailable = NewError(KindResolution, errors.New("source is unavailable"))
)

// Transport errors.
var (
	ErrRepeatedFailures = NewError(
		KindTransport,
		errors.New("playback failed repeatedly, stopped advancing the queue"),
	)
)

// Internal state errors.
var (
	ErrNotPlaying     = NewError(KindInternalState, errors.New("nothing is playing"))
	ErrAlreadyPaused  = NewError(KindInternalState, errors.New("playback is already paused"))
	ErrNotPaused      = NewError(KindInternalState, errors.New("playback is not paused"))
	ErrQueueEmpty     = NewError(KindInternalState, errors.New("queue is empty"))
	ErrSessionClosed  = NewError(KindInternalState, errors.New("session is closed"))
	ErrNotConnected   = NewError(KindInternalState, errors.New("not connected to a voice channel"))
	ErrAlreadyCurrent = NewError(KindInternalState, errors.New("a track is already current"))
)
