package recruit

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/logger"

	"github.com/rs/zerolog"
)

type SweepReport struct {
	Bound   int
	Skipped int
	Failed  int
}

// Sweeper は起動時に保存済みの募集へBindingを付け直す
type Sweeper struct {
	recruitments RecruitmentRepository
	roster       *RosterManager
	registry     *Registry
	channels     map[Category]ChannelID
}

func NewSweeper(
	recruitments RecruitmentRepository,
	roster *RosterManager,
	registry *Registry,
	channels map[Category]ChannelID,
) *Sweeper {
	return &Sweeper{
		recruitments: recruitments,
		roster:       roster,
		registry:     registry,
		channels:     channels,
	}
}

type sweepOutcome int

const (
	outcomeBound sweepOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run は全募集を処理する。1件の失敗で残りの処理は止めない
func (s *Sweeper) Run(ctx context.Context, platform Platform) (SweepReport, error) {
	var report SweepReport

	recruitments, err := s.recruitments.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list recruitments: %w", err)
	}

	for _, r := range recruitments {
		switch s.reattach(ctx, platform, r) {
		case outcomeBound:
			report.Bound++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	logger.Info().
		Str("component", "sweep").
		Int("total", len(recruitments)).
		Int("bound", report.Bound).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("reattachment sweep finished")

	return report, nil
}

func (s *Sweeper) reattach(ctx context.Context, platform Platform, r *Recruitment) sweepOutcome {
	log := logger.With().
		Str("component", "sweep").
		Int64("recruitment_id", int64(r.ID)).
		Str("thread_id", string(r.ThreadID)).
		Str("message_id", string(r.MessageID)).
		Logger()

	if err := s.checkBindable(ctx, platform, r); err != nil {
		return logSweepError(&log, err, "recruitment is not bindable")
	}

	binding := NewBinding(r, platform, s.roster)
	if err := binding.Refresh(ctx); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return logSweepError(&log, err, "summary message is gone")
		}
		// ボタン操作時に描き直されるので登録は行う
		log.Warn().Err(err).Msg("failed to refresh summary, binding anyway")
	}

	s.registry.Register(binding)
	log.Info().Msg("binding reattached")
	return outcomeBound
}

// checkBindable は起動時の付け直しとボタン操作時の付け直しで共通の除外条件を判定する。
// 除外するときはErrBindingNotFoundを包んで返す。スレッド取得の一時的な障害はそのまま返す
func (s *Sweeper) checkBindable(ctx context.Context, platform Platform, r *Recruitment) error {
	if !r.HasMessage() {
		return fmt.Errorf("%w: recruitment %d has no summary message", ErrBindingNotFound, r.ID)
	}
	if designated, ok := s.channels[r.Category]; !ok || designated != r.ChannelID {
		return fmt.Errorf("%w: recruitment %d is in undesignated channel %s (%s)",
			ErrBindingNotFound, r.ID, r.ChannelID, r.Category)
	}

	thread, err := platform.FetchThread(ctx, r.ThreadID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return fmt.Errorf("%w: %w", ErrBindingNotFound, err)
		}
		return err
	}
	if thread.ReadOnly() {
		return fmt.Errorf("%w: thread %s is read-only (archived=%t, locked=%t)",
			ErrBindingNotFound, r.ThreadID, thread.Archived, thread.Locked)
	}
	return nil
}

// Reattach は登録されていないメッセージのボタンが押されたときにBindingを作り直す。
// 起動時の付け直しで除外される募集にはBindingを作らない
func (s *Sweeper) Reattach(ctx context.Context, platform Platform, threadID ThreadID, messageID MessageID) (*Binding, error) {
	r, err := s.recruitments.GetByMessage(ctx, threadID, messageID)
	if err != nil {
		if errors.Is(err, ErrRecruitmentNotFound) {
			return nil, fmt.Errorf("%w: message %s", ErrBindingNotFound, messageID)
		}
		return nil, err
	}

	if binding, ok := s.registry.Get(r.ID); ok && binding.MessageID() == messageID {
		return binding, nil
	}

	if err := s.checkBindable(ctx, platform, r); err != nil {
		return nil, err
	}

	created := NewBinding(r, platform, s.roster)
	binding := s.registry.LoadOrRegister(created)
	if binding == created {
		logger.Info().
			Str("component", "sweep").
			Int64("recruitment_id", int64(r.ID)).
			Str("message_id", string(messageID)).
			Msg("binding reattached on demand")
	}
	return binding, nil
}

func logSweepError(log *zerolog.Logger, err error, msg string) sweepOutcome {
	if KindOf(err) == KindNotFound {
		log.Warn().Err(err).Msg(msg + ", skipped")
		return outcomeSkipped
	}
	log.Error().Err(err).Msg(msg)
	return outcomeFailed
}
