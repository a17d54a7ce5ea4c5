package discord

import (
	"fmt"
	"raid-bot/internal/logger"

	"github.com/bwmarrin/discordgo"
)

type SlashCommand interface {
	CreateCommand() *discordgo.ApplicationCommand
}

type InteractionListener interface {
	InteractionType() discordgo.InteractionType
	InteractionID() string
	MatchInteractionID(InteractionID string) bool
	Handle(session *discordgo.Session, interaction *discordgo.Interaction) error
}

type InteractionDispatcher struct {
	Listeners []InteractionListener
}

// InteractionIDOf はリスナー照合に使う識別子を取り出す
func InteractionIDOf(interaction *discordgo.Interaction) string {
	switch interaction.Type {
	case discordgo.InteractionMessageComponent:
		return interaction.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return interaction.ModalSubmitData().CustomID
	case discordgo.InteractionApplicationCommand:
		return interaction.ApplicationCommandData().Name
	}
	// Note: Autocompleteは未対応
	return ""
}

func (dispatcher *InteractionDispatcher) OnInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	got := InteractionIDOf(interaction.Interaction)

	for _, listener := range dispatcher.Listeners {
		if listener.InteractionType() != interaction.Type {
			continue
		}

		if want := listener.InteractionID(); want != "" && !listener.MatchInteractionID(got) {
			continue
		}

		if err := dispatch(listener, session, interaction.Interaction); err != nil {
			logger.Error().
				Err(err).
				Str("component", "discord").
				Str("interaction_id", got).
				Str("channel_id", interaction.ChannelID).
				Msg("failed to handle interaction")
		}
	}
}

// dispatch はリスナーのpanicをエラーに変換する
func dispatch(listener InteractionListener, session *discordgo.Session, interaction *discordgo.Interaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return listener.Handle(session, interaction)
}
