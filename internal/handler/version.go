package handler

import (
	"fmt"
	"raid-bot/internal/buildinfo"
	"raid-bot/internal/logger"
	"raid-bot/internal/recruit"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

const versionCommandName = "version"

type versionSlashCommand struct {
	baseSlashCommand
	registry *recruit.Registry
}

func NewVersionSlashCommand(registry *recruit.Registry) *versionSlashCommand {
	return &versionSlashCommand{
		registry: registry,
	}
}

func (command *versionSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        versionCommandName,
		Description: "BOTのバージョン情報を表示します。",
	}
}

func (command *versionSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *versionSlashCommand) InteractionID() string {
	return versionCommandName
}

func (command *versionSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *versionSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	info := buildinfo.Current()

	event := logger.Info().
		Str("component", "discord").
		Str("version", info.Version).
		Str("commit", info.ShortCommitID())
	if user := interactionUser(interaction); user != nil {
		event = event.Str("user_id", user.ID)
	}
	event.Msg("version checked")

	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{versionEmbed(info, command.registry.Len())},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func versionEmbed(info buildinfo.Info, bindings int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🤖 %s", info.VersionWithPrefix()),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Commit", Value: info.CommitID},
			{Name: "Built", Value: info.BuildTime},
			{Name: "Go(build)", Value: info.GoBuild},
			{Name: "Active recruitments", Value: strconv.Itoa(bindings)},
		},
	}
}
