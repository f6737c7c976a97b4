package discord

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

const (
	testGuildID   = "1"
	testUserID    = "2"
	testChannelID = "3"
)

// mockPlayer records the last input of each command and returns canned results.
type mockPlayer struct {
	err error

	playInput   *usecases.PlayInput
	playOutput  *usecases.PlayOutput
	pauseCalls  int
	resumeCalls int
	skipOutput  *usecases.SkipOutput
	stopCalls   int
	volumeInput *usecases.SetVolumeInput
	queueOutput *usecases.ListQueueOutput
	npOutput    *usecases.NowPlayingOutput
}

func (m *mockPlayer) Play(_ context.Context, input usecases.PlayInput) (*usecases.PlayOutput, error) {
	m.playInput = &input
	if m.err != nil {
		return nil, m.err
	}
	return m.playOutput, nil
}

func (m *mockPlayer) Pause(context.Context, usecases.PauseInput) error {
	m.pauseCalls++
	return m.err
}

func (m *mockPlayer) Resume(context.Context, usecases.ResumeInput) error {
	m.resumeCalls++
	return m.err
}

func (m *mockPlayer) Skip(context.Context, usecases.SkipInput) (*usecases.SkipOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.skipOutput, nil
}

func (m *mockPlayer) Stop(context.Context, usecases.StopInput) error {
	m.stopCalls++
	return m.err
}

func (m *mockPlayer) SetVolume(_ context.Context, input usecases.SetVolumeInput) (*usecases.SetVolumeOutput, error) {
	m.volumeInput = &input
	if m.err != nil {
		return nil, m.err
	}
	return &usecases.SetVolumeOutput{Percent: input.Percent}, nil
}

func (m *mockPlayer) ListQueue(context.Context, usecases.ListQueueInput) (*usecases.ListQueueOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.queueOutput, nil
}

func (m *mockPlayer) NowPlaying(context.Context, usecases.NowPlayingInput) (*usecases.NowPlayingOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.npOutput, nil
}

// mockSender records embeds sent to channels.
type mockSender struct {
	mu     sync.Mutex
	embeds []*discordgo.MessageEmbed
}

func (m *mockSender) ChannelMessageSendEmbed(
	_ string,
	embed *discordgo.MessageEmbed,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{ID: "99"}, nil
}

func testTrack(title string) domain.Track {
	return domain.Track{
		ID:       domain.TrackID("id-" + title),
		Title:    title,
		Source:   "source-" + title,
		URL:      "https://example.com/" + title,
		Duration: 3*time.Minute + 5*time.Second,
	}
}

func commandInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   testGuildID,
			ChannelID: testChannelID,
			Member:    &discordgo.Member{User: &discordgo.User{ID: testUserID}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func textMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Content:   content,
		Author:    &discordgo.User{ID: testUserID},
	}
}

func responseEmbed(t *testing.T, r *discordgo.InteractionResponse) *discordgo.MessageEmbed {
	t.Helper()
	if r == nil || r.Data == nil || len(r.Data.Embeds) != 1 {
		t.Fatal("expected a response with one embed")
	}
	return r.Data.Embeds[0]
}
