package discord

import "fmt"

func FormatMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatChannelMention はスレッドを含むチャンネルへのリンク
func FormatChannelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

func FormatBullet(text string) string {
	return fmt.Sprintf("• %s", text)
}

func FormatCodeBlock(text string) string {
	return fmt.Sprintf("```%s```", text)
}
