package handler

import (
	"fmt"
	"raid-bot/internal/discord"
	"raid-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
)

// UI用文字列
const (
	applyLabel  = "応募する"
	cancelLabel = "応募取消"
	separator   = "--------"
)

const embedColor = 0x3498db

// フィールド名は空にできないためゼロ幅スペースを使う
const blankFieldName = "\u200b"

// toEmbed は要約をEmbedに変換する
func toEmbed(summary *recruit.Summary) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       summary.Title,
		Description: fmt.Sprintf("🕓 出発時間: %s", summary.StartTime),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔰 難易度", Value: discord.FormatCodeBlock(summary.Difficulty), Inline: true},
			{Name: "募集人数", Value: discord.FormatCodeBlock(summary.CapacityLine), Inline: true},
			{Name: blankFieldName, Value: separator},
			{Name: "👑 リーダー", Value: summary.Leader, Inline: true},
			{Name: "🙋 応募者一覧", Value: summary.Participants, Inline: true},
			{Name: blankFieldName, Value: separator},
			{Name: "❗ 備考", Value: summary.Note},
		},
	}
}

// toControls は応募/取消ボタンを作る。識別子はカテゴリ単位で共通
func toControls(category recruit.Category) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    applyLabel,
				Style:    discordgo.SuccessButton,
				CustomID: controlCustomID(category, controlApply),
			},
			discordgo.Button{
				Label:    cancelLabel,
				Style:    discordgo.DangerButton,
				CustomID: controlCustomID(category, controlCancel),
			},
		},
	}
}
