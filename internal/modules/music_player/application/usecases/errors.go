package usecases

import (
	"errors"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// ErrUserNotInVoice is returned when the caller is not in a voice channel.
var ErrUserNotInVoice = domain.NewError(
	domain.KindUserInput,
	errors.New("you must be in a voice channel"),
)
