package handler

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/discord"
	"raid-bot/internal/logger"
	"raid-bot/internal/recruit"
	"time"

	"github.com/bwmarrin/discordgo"
)

const registrationTimeout = 15 * time.Second

// 募集コマンドのオプション名
const (
	optionKind       = "種類"
	optionDifficulty = "難易度"
	optionCapacity   = "募集人数"
	optionStartTime  = "出発時間"
	optionNote       = "備考"
)

var registerCommandNames = map[recruit.Category]string{
	recruit.CategoryGlassRaid: "グラスギブネン募集",
	recruit.CategoryAbyss:     "アビス募集",
}

// ユーザーに返すメッセージ
const (
	registeredMessage      = "募集を登録しました: %s"
	invalidStartTimeMsg    = "❌ 出発時間は24時間形式(例: 00:00)で入力してください。"
	wrongChannelMessage    = "このコマンドは指定されたチャンネルでのみ使用できます。"
	invalidOptionMessage   = "❌ 選択肢にない値が指定されました。"
	registrationFailedText = "スレッド作成中にエラーが発生しました。"
)

type registerSlashCommand struct {
	baseSlashCommand
	spec      *recruit.CategorySpec
	registrar *recruit.Registrar
}

func NewRegisterSlashCommand(category recruit.Category, registrar *recruit.Registrar) (*registerSlashCommand, error) {
	spec, ok := recruit.SpecOf(category)
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}
	return &registerSlashCommand{
		spec:      spec,
		registrar: registrar,
	}, nil
}

func stringChoices(values []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return choices
}

func intChoices(values []int) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: fmt.Sprint(v), Value: v})
	}
	return choices
}

func (command *registerSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	var options []*discordgo.ApplicationCommandOption
	if command.spec.HasKinds() {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionKind,
			Description: fmt.Sprintf("%sの種類を選択してください", command.spec.DisplayName),
			Required:    true,
			Choices:     stringChoices(command.spec.Kinds),
		})
	}

	options = append(options,
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionDifficulty,
			Description: "難易度を選択してください",
			Required:    true,
			Choices:     stringChoices(command.spec.Difficulties),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        optionCapacity,
			Description: "募集人数を選択してください",
			Required:    true,
			Choices:     intChoices(command.spec.Capacities),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionStartTime,
			Description: "出発時間を24時間形式(例: 00:00)で入力してください",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionNote,
			Description: "備考を選択してください",
			Required:    true,
			Choices:     stringChoices(recruit.Notes),
		},
	)

	return &discordgo.ApplicationCommand{
		Name:        registerCommandNames[command.spec.Category],
		Description: fmt.Sprintf("%sの募集を登録します。", command.spec.DisplayName),
		Options:     options,
	}
}

func (command *registerSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *registerSlashCommand) InteractionID() string {
	return registerCommandNames[command.spec.Category]
}

func (command *registerSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *registerSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), registrationTimeout)
	defer cancel()

	if err := deferEphemeral(ctx, session, interaction); err != nil {
		return fmt.Errorf("failed to defer registration: %w", err)
	}

	input := command.parseInput(interaction)
	binding, err := command.registrar.Register(ctx, NewPlatform(session), input)

	if editErr := editInteractionResponse(ctx, session, interaction, registrationMessage(binding, err)); editErr != nil {
		logger.Warn().Err(editErr).Str("component", "recruit").Msg("failed to edit registration response")
	}

	if err != nil && recruit.KindOf(err) == recruit.KindValidation {
		logger.Info().
			Err(err).
			Str("component", "recruit").
			Str("category", string(input.Category)).
			Str("user_id", string(input.LeaderID)).
			Msg("registration rejected")
		return nil
	}
	return err
}

func (command *registerSlashCommand) parseInput(interaction *discordgo.Interaction) recruit.RegisterInput {
	options := command.getOptionMap(interaction)

	input := recruit.RegisterInput{
		Category:   command.spec.Category,
		Kind:       options.stringOption(optionKind),
		Difficulty: options.stringOption(optionDifficulty),
		Capacity:   options.intOption(optionCapacity),
		StartTime:  options.stringOption(optionStartTime),
		Note:       options.stringOption(optionNote),
		LeaderName: displayName(interaction),
		ChannelID:  recruit.ChannelID(interaction.ChannelID),
	}
	if user := interactionUser(interaction); user != nil {
		input.LeaderID = recruit.UserID(user.ID)
	}
	return input
}

// registrationMessage は登録結果をコマンド実行者向けの文言にする
func registrationMessage(binding *recruit.Binding, err error) string {
	if err == nil {
		return fmt.Sprintf(registeredMessage, discord.FormatChannelMention(string(binding.ThreadID())))
	}

	switch {
	case recruit.KindOf(err) != recruit.KindValidation:
		return registrationFailedText
	case errors.Is(err, recruit.ErrInvalidStartTime):
		return invalidStartTimeMsg
	case errors.Is(err, recruit.ErrWrongChannel):
		return wrongChannelMessage
	default:
		return invalidOptionMessage
	}
}
