package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// NowPlayingInfo is what a "Now Playing" notification displays.
type NowPlayingInfo struct {
	Track              domain.Track
	RequesterName      string
	RequesterAvatarURL string
}

// NotificationSender sends notifications to Discord text channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed and returns its message ID.
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) (messageID snowflake.ID, err error)

	// DeleteMessage deletes a message from the channel.
	DeleteMessage(channelID, messageID snowflake.ID) error

	// SendInfo sends an informational embed.
	SendInfo(channelID snowflake.ID, message string) error

	// SendError sends an error embed.
	SendError(channelID snowflake.ID, message string) error
}

// UserInfo is how a requester is shown in notifications.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider looks up requesters for notifications.
type UserInfoProvider interface {
	// GetUserInfo returns the member's guild display name and avatar.
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
