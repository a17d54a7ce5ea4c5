package discord

import (
	"errors"
	"fmt"
	"raid-bot/internal/logger"

	"github.com/bwmarrin/discordgo"
)

type SessionConfig interface {
	Token() string
	GuildID() string
	Intent() discordgo.Intent
	Handlers() []any
	SlashCommands() []*discordgo.ApplicationCommand
	BeforeOpen() []func(*discordgo.Session) error
}

type sessionConfig struct {
	token         string
	guildID       string
	intent        discordgo.Intent
	handlers      []any
	slashCommands []SlashCommand
	beforeOpen    []func(*discordgo.Session) error
}

func (config *sessionConfig) Token() string {
	return config.token
}

func (config *sessionConfig) GuildID() string {
	return config.guildID
}

func (config *sessionConfig) Intent() discordgo.Intent {
	return config.intent
}

func (config *sessionConfig) Handlers() []any {
	return append([]any(nil), config.handlers...)
}

func (config *sessionConfig) SlashCommands() []*discordgo.ApplicationCommand {
	commands := make([]*discordgo.ApplicationCommand, 0, len(config.slashCommands))
	for _, command := range config.slashCommands {
		commands = append(commands, command.CreateCommand())
	}
	return commands
}

func (config *sessionConfig) BeforeOpen() []func(*discordgo.Session) error {
	return append([]func(*discordgo.Session) error(nil), config.beforeOpen...)
}

func (config *sessionConfig) validate() error {
	if config.token == "" {
		return errors.New("token is required")
	}
	if len(config.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	if len(config.slashCommands) > 0 && config.guildID == "" {
		return errors.New("guild id is required to register slash commands")
	}
	return nil
}

type sessionConfigOption func(*sessionConfig) error

func NewSessionConfig(opts ...sessionConfigOption) (*sessionConfig, error) {
	config := &sessionConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func WithToken(token string) sessionConfigOption {
	return func(config *sessionConfig) error {
		if token == "" {
			return fmt.Errorf("discord token is required")
		}
		config.token = token
		return nil
	}
}

// WithGuild はスラッシュコマンドを登録するギルドを指定する
func WithGuild(guildID string) sessionConfigOption {
	return func(config *sessionConfig) error {
		if guildID == "" {
			return fmt.Errorf("guild id is required")
		}
		config.guildID = guildID
		return nil
	}
}

func WithIntent(intent discordgo.Intent) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.intent |= intent
		return nil
	}
}

func WithInteractionCreateHandler(
	handler func(*discordgo.Session, *discordgo.InteractionCreate),
) sessionConfigOption {
	return withHandler(handler)
}

func WithSlashCommand(command SlashCommand) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.slashCommands = append(config.slashCommands, command)
		return nil
	}
}

// WithBeforeOpen はゲートウェイ接続前に同期で実行する処理を登録する
// RESTは使えるが、インタラクションはまだ届かない
func WithBeforeOpen(hook func(*discordgo.Session) error) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.beforeOpen = append(config.beforeOpen, hook)
		return nil
	}
}

func withHandler(handler any) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.handlers = append(config.handlers, handler)
		return nil
	}
}

type SessionManager struct {
	session *discordgo.Session
}

func (manager *SessionManager) Open(config SessionConfig) error {
	if manager.session != nil {
		_ = manager.session.Close()
		manager.session = nil
	}

	session, err := discordgo.New("Bot " + config.Token())
	if err != nil {
		return err
	}

	if config.Intent() != 0 {
		session.Identify.Intents = config.Intent()
	}

	for _, hook := range config.BeforeOpen() {
		if err := hook(session); err != nil {
			return fmt.Errorf("before open hook failed: %w", err)
		}
	}

	for _, handler := range config.Handlers() {
		session.AddHandler(handler)
	}

	if err := session.Open(); err != nil {
		return err
	}

	if commands := config.SlashCommands(); len(commands) > 0 {
		registered, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, config.GuildID(), commands)
		if err != nil {
			_ = session.Close()
			return fmt.Errorf("failed to register slash commands: %w", err)
		}
		logger.Info().
			Str("component", "discord").
			Str("guild_id", config.GuildID()).
			Int("commands", len(registered)).
			Msg("slash commands registered")
	}

	manager.session = session
	return nil
}

func (manager *SessionManager) Close() error {
	if manager.session == nil {
		return nil
	}

	err := manager.session.Close()
	manager.session = nil
	return err
}
