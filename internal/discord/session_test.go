package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type stubSlashCommand struct {
	name string
}

func (c stubSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.name, Description: c.name}
}

func noopInteractionHandler(*discordgo.Session, *discordgo.InteractionCreate) {}

func TestNewSessionConfig(t *testing.T) {
	hook := func(*discordgo.Session) error { return nil }

	config, err := NewSessionConfig(
		WithToken("token"),
		WithGuild("guild"),
		WithIntent(discordgo.IntentGuilds),
		WithIntent(discordgo.IntentGuildMessages),
		WithInteractionCreateHandler(noopInteractionHandler),
		WithSlashCommand(stubSlashCommand{name: "a"}),
		WithSlashCommand(stubSlashCommand{name: "b"}),
		WithBeforeOpen(hook),
	)
	if err != nil {
		t.Fatalf("NewSessionConfig() error = %v", err)
	}

	if config.Token() != "token" {
		t.Errorf("Token() = %v, want token", config.Token())
	}
	if config.GuildID() != "guild" {
		t.Errorf("GuildID() = %v, want guild", config.GuildID())
	}
	if want := discordgo.IntentGuilds | discordgo.IntentGuildMessages; config.Intent() != want {
		t.Errorf("Intent() = %v, want %v", config.Intent(), want)
	}
	if len(config.Handlers()) != 1 {
		t.Errorf("Handlers() length = %v, want 1", len(config.Handlers()))
	}
	if len(config.BeforeOpen()) != 1 {
		t.Errorf("BeforeOpen() length = %v, want 1", len(config.BeforeOpen()))
	}

	commands := config.SlashCommands()
	if len(commands) != 2 || commands[0].Name != "a" || commands[1].Name != "b" {
		t.Errorf("SlashCommands() = %v, want [a b]", commands)
	}
}

func TestNewSessionConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []sessionConfigOption
	}{
		{
			name: "トークンが空",
			opts: []sessionConfigOption{WithToken(""), WithInteractionCreateHandler(noopInteractionHandler)},
		},
		{
			name: "トークン未指定",
			opts: []sessionConfigOption{WithInteractionCreateHandler(noopInteractionHandler)},
		},
		{
			name: "ハンドラなし",
			opts: []sessionConfigOption{WithToken("token")},
		},
		{
			name: "ギルドが空",
			opts: []sessionConfigOption{WithToken("token"), WithGuild(""), WithInteractionCreateHandler(noopInteractionHandler)},
		},
		{
			name: "ギルドなしでスラッシュコマンド",
			opts: []sessionConfigOption{
				WithToken("token"),
				WithInteractionCreateHandler(noopInteractionHandler),
				WithSlashCommand(stubSlashCommand{name: "a"}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSessionConfig(tt.opts...); err == nil {
				t.Error("NewSessionConfig() error = nil, want error")
			}
		})
	}
}
