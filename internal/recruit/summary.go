package recruit

import (
	"fmt"
	"raid-bot/internal/discord"
	"strings"
)

const noParticipantsYet = "• まだいません"

// Summary は募集メッセージに表示する内容
type Summary struct {
	Category     Category
	Title        string
	StartTime    string
	Difficulty   string
	Leader       string
	CapacityLine string
	Participants string
	Note         string
}

// Render は名簿から表示内容を組み立てる。入力が同じなら出力も同じ
func Render(roster *Roster) *Summary {
	r := roster.Recruitment
	return &Summary{
		Category:     r.Category,
		Title:        renderTitle(r),
		StartTime:    r.StartTime,
		Difficulty:   r.Difficulty,
		Leader:       discord.FormatMention(string(r.LeaderID)),
		CapacityLine: fmt.Sprintf("%d / %d", roster.Count(), r.Capacity),
		Participants: renderParticipants(roster.Participants),
		Note:         r.Note,
	}
}

func renderTitle(r *Recruitment) string {
	if r.Kind != "" {
		return fmt.Sprintf("📢 %s %s(%s) 募集!", r.Category.DisplayName(), r.Kind, r.Difficulty)
	}
	return fmt.Sprintf("📢 %s(%s) 募集!", r.Category.DisplayName(), r.Difficulty)
}

func renderParticipants(users []UserID) string {
	if len(users) == 0 {
		return noParticipantsYet
	}
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, discord.FormatBullet(discord.FormatMention(string(u))))
	}
	return strings.Join(lines, "\n")
}
