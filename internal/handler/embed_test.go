package handler

import (
	"raid-bot/internal/recruit"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestToEmbed(t *testing.T) {
	roster := recruit.NewRoster(&recruit.Recruitment{
		ID:         1,
		Category:   recruit.CategoryAbyss,
		Kind:       "破滅の殿堂",
		Difficulty: "地獄2",
		Capacity:   3,
		StartTime:  "22:30",
		Note:       "出発時間まで募集します",
		LeaderID:   "leader",
	}, []recruit.Participant{{Seq: 1, RecruitmentID: 1, UserID: "u1"}})

	embed := toEmbed(recruit.Render(roster))

	if embed.Title != "📢 アビス 破滅の殿堂(地獄2) 募集!" {
		t.Errorf("Title = %v", embed.Title)
	}
	if embed.Description != "🕓 出発時間: 22:30" {
		t.Errorf("Description = %v", embed.Description)
	}

	fields := map[string]string{}
	for _, f := range embed.Fields {
		if f.Name == "" {
			t.Errorf("field with empty name: %+v", f)
		}
		fields[f.Name] = f.Value
	}

	want := map[string]string{
		"🔰 難易度":   "```地獄2```",
		"募集人数":    "```1 / 3```",
		"👑 リーダー":  "<@leader>",
		"🙋 応募者一覧": "• <@u1>",
		"❗ 備考":    "出発時間まで募集します",
	}
	for name, value := range want {
		if fields[name] != value {
			t.Errorf("field %s = %q, want %q", name, fields[name], value)
		}
	}
}

func TestToControls(t *testing.T) {
	row := toControls(recruit.CategoryGlassRaid)

	if len(row.Components) != 2 {
		t.Fatalf("Components length = %v, want 2", len(row.Components))
	}

	apply, ok := row.Components[0].(discordgo.Button)
	if !ok {
		t.Fatalf("Components[0] is %T, want discordgo.Button", row.Components[0])
	}
	if apply.Label != applyLabel || apply.Style != discordgo.SuccessButton {
		t.Errorf("apply button = %+v", apply)
	}
	if apply.CustomID != controlCustomID(recruit.CategoryGlassRaid, controlApply) {
		t.Errorf("apply CustomID = %v", apply.CustomID)
	}

	cancel, ok := row.Components[1].(discordgo.Button)
	if !ok {
		t.Fatalf("Components[1] is %T, want discordgo.Button", row.Components[1])
	}
	if cancel.Label != cancelLabel || cancel.Style != discordgo.DangerButton {
		t.Errorf("cancel button = %+v", cancel)
	}
	if cancel.CustomID != controlCustomID(recruit.CategoryGlassRaid, controlCancel) {
		t.Errorf("cancel CustomID = %v", cancel.CustomID)
	}
}
