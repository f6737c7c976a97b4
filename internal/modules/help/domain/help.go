package domain

import (
	"fmt"
	"strings"
)

// CommandHelp describes one music command.
type CommandHelp struct {
	Name        string
	Args        string
	Description string
}

// MusicCommands lists the commands shown by help, in display order.
var MusicCommands = []CommandHelp{
	{Name: "play", Args: "<query or URL>", Description: "Play a track or add it to the queue"},
	{Name: "pause", Description: "Pause playback"},
	{Name: "resume", Description: "Resume playback"},
	{Name: "skip", Description: "Skip the current track"},
	{Name: "stop", Description: "Stop playback, clear the queue and leave"},
	{Name: "volume", Args: "<0-100>", Description: "Set the playback volume"},
	{Name: "queue", Description: "Show the queue"},
	{Name: "np", Description: "Show the current track"},
}

// HelpPage is the rendered command list.
type HelpPage struct {
	Title       string
	Description string
}

// NewHelpPage renders commands for slash usage and, if prefix is set, text usage.
func NewHelpPage(prefix string, commands []CommandHelp) *HelpPage {
	var b strings.Builder
	for _, cmd := range commands {
		usage := "/" + cmd.Name
		if cmd.Args != "" {
			usage += " " + cmd.Args
		}
		fmt.Fprintf(&b, "`%s` %s\n", usage, cmd.Description)
	}

	if prefix != "" {
		fmt.Fprintf(&b, "\nEvery command also works as a text command, e.g. `%splay never gonna give you up`.", prefix)
	}

	return &HelpPage{
		Title:       "Commands",
		Description: strings.TrimSuffix(b.String(), "\n"),
	}
}

// CommandsResult represents the result of evaluating a text help request.
type CommandsResult struct {
	ShouldRespond bool
}

// NewCommandsResult checks whether content is the text help command.
func NewCommandsResult(prefix, content string) *CommandsResult {
	if prefix == "" {
		return &CommandsResult{}
	}
	content = strings.ToLower(strings.TrimSpace(content))
	return &CommandsResult{
		ShouldRespond: content == prefix+"commands" || content == prefix+"help",
	}
}
