package recruit

import (
	"context"
	"fmt"
	"raid-bot/internal/logger"
	"regexp"
	"time"
)

var startTimePattern = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

func ValidateStartTime(startTime string) error {
	if !startTimePattern.MatchString(startTime) {
		return fmt.Errorf("%w: %q", ErrInvalidStartTime, startTime)
	}
	return nil
}

type RegisterInput struct {
	Category   Category
	Kind       string
	Difficulty string
	Capacity   int
	StartTime  string
	Note       string
	LeaderID   UserID
	LeaderName string
	// ChannelID はコマンドが実行されたチャンネル
	ChannelID ChannelID
}

// Registrar は募集スレッドと要約メッセージを作成し、Bindingを登録する
type Registrar struct {
	recruitments RecruitmentRepository
	roster       *RosterManager
	registry     *Registry
	channels     map[Category]ChannelID
	location     *time.Location
	now          func() time.Time
}

func NewRegistrar(
	recruitments RecruitmentRepository,
	roster *RosterManager,
	registry *Registry,
	channels map[Category]ChannelID,
	location *time.Location,
) *Registrar {
	if location == nil {
		location = time.UTC
	}
	return &Registrar{
		recruitments: recruitments,
		roster:       roster,
		registry:     registry,
		channels:     channels,
		location:     location,
		now:          time.Now,
	}
}

func (r *Registrar) Register(ctx context.Context, platform Platform, input RegisterInput) (*Binding, error) {
	if err := r.validate(input); err != nil {
		return nil, err
	}

	threadID, err := platform.CreateThread(ctx, input.ChannelID, r.threadName(input))
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	binding, err := r.publish(ctx, platform, threadID, input)
	if err != nil {
		// 要約のない孤立スレッドを残さない
		if delErr := platform.DeleteThread(context.WithoutCancel(ctx), threadID); delErr != nil {
			logger.Error().
				Err(delErr).
				Str("component", "recruit").
				Str("thread_id", string(threadID)).
				Msg("failed to delete thread after registration failure")
		}
		return nil, err
	}

	logger.Info().
		Str("component", "recruit").
		Int64("recruitment_id", int64(binding.recruitmentID)).
		Str("category", string(input.Category)).
		Str("thread_id", string(threadID)).
		Str("message_id", string(binding.messageID)).
		Str("leader_id", string(input.LeaderID)).
		Msg("recruitment registered")

	return binding, nil
}

func (r *Registrar) validate(input RegisterInput) error {
	if err := ValidateStartTime(input.StartTime); err != nil {
		return err
	}

	designated, ok := r.channels[input.Category]
	if !ok || designated != input.ChannelID {
		return ErrWrongChannel
	}

	spec, ok := SpecOf(input.Category)
	if !ok {
		return invalidOption("category", input.Category)
	}
	return spec.validate(input.Kind, input.Difficulty, input.Capacity, input.Note)
}

func (r *Registrar) publish(ctx context.Context, platform Platform, threadID ThreadID, input RegisterInput) (*Binding, error) {
	recruitment := &Recruitment{
		Category:   input.Category,
		Kind:       input.Kind,
		Difficulty: input.Difficulty,
		Capacity:   input.Capacity,
		StartTime:  input.StartTime,
		Note:       input.Note,
		LeaderID:   input.LeaderID,
		ChannelID:  input.ChannelID,
		ThreadID:   threadID,
		CreatedAt:  r.now(),
	}

	id, err := r.recruitments.Create(ctx, recruitment)
	if err != nil {
		return nil, err
	}
	recruitment.ID = id

	messageID, err := platform.PostSummary(ctx, threadID, Render(NewRoster(recruitment, nil)))
	if err != nil {
		return nil, fmt.Errorf("failed to post summary for recruitment %d: %w", id, err)
	}

	// 投稿直後からボタンが押せるので、メッセージIDの保存より先にBindingを登録する
	recruitment.MessageID = messageID
	binding := NewBinding(recruitment, platform, r.roster)
	r.registry.Register(binding)

	if err := r.recruitments.UpdateMessageID(ctx, id, messageID); err != nil {
		r.registry.Remove(binding)
		return nil, err
	}

	return binding, nil
}

func (r *Registrar) threadName(input RegisterInput) string {
	switch input.Category {
	case CategoryGlassRaid:
		date := r.now().In(r.location).Format("01月02日")
		return fmt.Sprintf(
			"募集日:%s/%s(%s)/出発時間:%s - %s",
			date,
			input.Category.DisplayName(),
			input.Difficulty,
			input.StartTime,
			input.LeaderName,
		)
	default:
		return fmt.Sprintf("%s募集(%s) - %s", input.Category.DisplayName(), input.Difficulty, input.LeaderName)
	}
}
