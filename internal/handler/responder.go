package handler

import (
	"context"
	"raid-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
)

var noticeTexts = map[recruit.Notice]string{
	recruit.NoticeApplied:        "応募が完了しました!",
	recruit.NoticeCanceled:       "応募を取り消しました!",
	recruit.NoticeAlreadyApplied: "すでに応募済みです!",
	recruit.NoticeNotApplied:     "応募履歴がありません。",
	recruit.NoticeFull:           "募集人数に達しています!",
	recruit.NoticeApplyFailed:    "応募中にエラーが発生しました。",
	recruit.NoticeCancelFailed:   "取消中にエラーが発生しました。",
}

func noticeText(notice recruit.Notice) string {
	if text, ok := noticeTexts[notice]; ok {
		return text
	}
	return "エラーが発生しました。"
}

// interactionResponder は遅延応答済みのインタラクションを編集して本人にだけ通知する
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *interactionResponder) Notify(ctx context.Context, notice recruit.Notice) error {
	return editInteractionResponse(ctx, r.session, r.interaction, noticeText(notice))
}

// deferEphemeral は3秒以内の応答期限を満たすため、本人にだけ見える遅延応答を返す
func deferEphemeral(ctx context.Context, session *discordgo.Session, interaction *discordgo.Interaction) error {
	return session.InteractionRespond(
		interaction,
		&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
			},
		},
		discordgo.WithContext(ctx),
	)
}

func editInteractionResponse(
	ctx context.Context,
	session *discordgo.Session,
	interaction *discordgo.Interaction,
	message string,
) error {
	_, err := session.InteractionResponseEdit(
		interaction,
		&discordgo.WebhookEdit{Content: &message},
		discordgo.WithContext(ctx),
	)
	return err
}

// interactionUser はギルド内ならメンバー、DMならユーザーを返す
func interactionUser(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

// displayName はサーバーニックネーム、表示名、ユーザー名の順に使う
func displayName(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.Nick != "" {
		return interaction.Member.Nick
	}
	user := interactionUser(interaction)
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
