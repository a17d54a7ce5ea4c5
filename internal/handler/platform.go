package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"raid-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
)

// スレッドは1日で自動アーカイブ
const threadAutoArchiveMinutes = 1440

// スレッド名の上限
const maxThreadNameRunes = 100

type discordPlatform struct {
	session *discordgo.Session
}

// NewPlatform はdiscordgoのセッションでrecruit.Platformを実装する
func NewPlatform(session *discordgo.Session) recruit.Platform {
	return &discordPlatform{
		session: session,
	}
}

func (p *discordPlatform) CreateThread(ctx context.Context, channelID recruit.ChannelID, name string) (recruit.ThreadID, error) {
	thread, err := p.session.ThreadStartComplex(
		string(channelID),
		&discordgo.ThreadStart{
			Name:                truncateRunes(name, maxThreadNameRunes),
			AutoArchiveDuration: threadAutoArchiveMinutes,
			Type:                discordgo.ChannelTypeGuildPublicThread,
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return "", platformError("create thread", err, recruit.ErrThreadNotFound)
	}
	return recruit.ThreadID(thread.ID), nil
}

func (p *discordPlatform) DeleteThread(ctx context.Context, threadID recruit.ThreadID) error {
	if _, err := p.session.ChannelDelete(string(threadID), discordgo.WithContext(ctx)); err != nil {
		return platformError("delete thread", err, recruit.ErrThreadNotFound)
	}
	return nil
}

func (p *discordPlatform) FetchThread(ctx context.Context, threadID recruit.ThreadID) (*recruit.Thread, error) {
	channel, err := p.session.Channel(string(threadID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, platformError("fetch thread", err, recruit.ErrThreadNotFound)
	}
	return toThread(channel)
}

// toThread はスレッド以外のチャンネルをErrThreadNotFoundとして扱う
func toThread(channel *discordgo.Channel) (*recruit.Thread, error) {
	if !channel.IsThread() {
		return nil, fmt.Errorf("%w: channel %s is not a thread (type %d)", recruit.ErrThreadNotFound, channel.ID, channel.Type)
	}

	thread := &recruit.Thread{ID: recruit.ThreadID(channel.ID)}
	if channel.ThreadMetadata != nil {
		thread.Archived = channel.ThreadMetadata.Archived
		thread.Locked = channel.ThreadMetadata.Locked
	}
	return thread, nil
}

func (p *discordPlatform) FetchMessage(ctx context.Context, threadID recruit.ThreadID, messageID recruit.MessageID) (*recruit.Message, error) {
	message, err := p.session.ChannelMessage(string(threadID), string(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, platformError("fetch message", err, recruit.ErrMessageNotFound)
	}
	return &recruit.Message{
		ThreadID: recruit.ThreadID(message.ChannelID),
		ID:       recruit.MessageID(message.ID),
	}, nil
}

func (p *discordPlatform) PostSummary(ctx context.Context, threadID recruit.ThreadID, summary *recruit.Summary) (recruit.MessageID, error) {
	message, err := p.session.ChannelMessageSendComplex(
		string(threadID),
		&discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{toEmbed(summary)},
			Components: []discordgo.MessageComponent{toControls(summary.Category)},
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return "", platformError("post summary", err, recruit.ErrThreadNotFound)
	}
	return recruit.MessageID(message.ID), nil
}

func (p *discordPlatform) EditSummary(ctx context.Context, message *recruit.Message, summary *recruit.Summary) error {
	embeds := []*discordgo.MessageEmbed{toEmbed(summary)}
	components := []discordgo.MessageComponent{toControls(summary.Category)}

	_, err := p.session.ChannelMessageEditComplex(
		&discordgo.MessageEdit{
			ID:         string(message.ID),
			Channel:    string(message.ThreadID),
			Embeds:     &embeds,
			Components: &components,
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return platformError("edit summary", err, recruit.ErrMessageNotFound)
	}
	return nil
}

// platformError は存在しない/アクセスできない対象をnotFoundに、それ以外を一時的な失敗に変換する
func platformError(op string, err error, notFound error) error {
	if isNotFound(err) {
		return fmt.Errorf("failed to %s: %w: %w", op, notFound, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, recruit.ErrPlatformUnavailable, err)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
