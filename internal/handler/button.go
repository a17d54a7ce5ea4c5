package handler

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/logger"
	"raid-bot/internal/recruit"
	"time"

	"github.com/bwmarrin/discordgo"
)

const activationTimeout = 10 * time.Second

// controlButtonCommand はカテゴリごとの応募/取消ボタンを受けて、押されたメッセージのBindingに渡す
type controlButtonCommand struct {
	customIDInteractionCommand
	category recruit.Category
	action   controlAction
	registry *recruit.Registry
	sweeper  *recruit.Sweeper
}

func newControlButtonCommand(
	category recruit.Category,
	act controlAction,
	registry *recruit.Registry,
	sweeper *recruit.Sweeper,
) *controlButtonCommand {
	return &controlButtonCommand{
		customIDInteractionCommand: customIDInteractionCommand{
			customID: controlID(category, act),
		},
		category: category,
		action:   act,
		registry: registry,
		sweeper:  sweeper,
	}
}

func NewApplyButtonCommand(category recruit.Category, registry *recruit.Registry, sweeper *recruit.Sweeper) *controlButtonCommand {
	return newControlButtonCommand(category, controlApply, registry, sweeper)
}

func NewCancelButtonCommand(category recruit.Category, registry *recruit.Registry, sweeper *recruit.Sweeper) *controlButtonCommand {
	return newControlButtonCommand(category, controlCancel, registry, sweeper)
}

func (command *controlButtonCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionMessageComponent
}

func (command *controlButtonCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), activationTimeout)
	defer cancel()

	// 応答を保留してから返すと考え中の表示が残るので先に確認する
	user := interactionUser(interaction)
	if user == nil || interaction.Message == nil {
		return errors.New("interaction has no user or message")
	}

	if err := deferEphemeral(ctx, session, interaction); err != nil {
		return fmt.Errorf("failed to defer %s: %w", command.customID, err)
	}

	platform := NewPlatform(session)
	responder := &interactionResponder{session: session, interaction: interaction}
	threadID := recruit.ThreadID(interaction.ChannelID)
	messageID := recruit.MessageID(interaction.Message.ID)

	binding, err := command.resolveBinding(ctx, platform, threadID, messageID)
	if err != nil {
		if notifyErr := responder.Notify(ctx, command.failedNotice()); notifyErr != nil {
			err = errors.Join(err, notifyErr)
		}
		if recruit.KindOf(err) == recruit.KindNotFound {
			logger.Warn().
				Err(err).
				Str("component", "recruit").
				Str("thread_id", string(threadID)).
				Str("message_id", string(messageID)).
				Msg("activation for unknown recruitment")
			return nil
		}
		return err
	}

	userID := recruit.UserID(user.ID)
	if command.action == controlApply {
		err = binding.Apply(ctx, userID, responder)
	} else {
		err = binding.Cancel(ctx, userID, responder)
	}
	if err != nil {
		return fmt.Errorf("recruitment %d %s by %s: %w", binding.RecruitmentID(), command.action, userID, err)
	}
	return nil
}

// resolveBinding はレジストリになければストアから作り直す
func (command *controlButtonCommand) resolveBinding(
	ctx context.Context,
	platform recruit.Platform,
	threadID recruit.ThreadID,
	messageID recruit.MessageID,
) (*recruit.Binding, error) {
	if binding, ok := command.registry.Lookup(messageID); ok {
		return binding, nil
	}
	return command.sweeper.Reattach(ctx, platform, threadID, messageID)
}

func (command *controlButtonCommand) failedNotice() recruit.Notice {
	if command.action == controlApply {
		return recruit.NoticeApplyFailed
	}
	return recruit.NoticeCancelFailed
}
