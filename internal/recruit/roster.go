package recruit

import (
	"context"
	"errors"
	"raid-bot/internal/logger"
)

// RosterManager は募集ごとの応募/取消の不変条件(定員・重複なし)を守る
type RosterManager struct {
	recruitments RecruitmentRepository
	participants ParticipantRepository
}

func NewRosterManager(recruitments RecruitmentRepository, participants ParticipantRepository) *RosterManager {
	return &RosterManager{
		recruitments: recruitments,
		participants: participants,
	}
}

func (m *RosterManager) Load(ctx context.Context, id RecruitmentID) (*Roster, error) {
	recruitment, err := m.recruitments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.load(ctx, recruitment)
}

func (m *RosterManager) load(ctx context.Context, recruitment *Recruitment) (*Roster, error) {
	participants, err := m.participants.List(ctx, recruitment.ID)
	if err != nil {
		return nil, err
	}
	return NewRoster(recruitment, participants), nil
}

// Apply は一意キー付きの挿入を行い、挿入後に応募順位で定員を再確認する。
// 定員外だった場合は自分の行を削除してErrFullを返す。
// 事前の読み取りは早期に断るためだけのもので、判定の根拠にはしない。
func (m *RosterManager) Apply(ctx context.Context, id RecruitmentID, userID UserID) (*Roster, error) {
	recruitment, err := m.recruitments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := m.participants.List(ctx, id)
	if err != nil {
		return nil, err
	}
	before := NewRoster(recruitment, current)
	if before.Contains(userID) {
		return nil, ErrAlreadyApplied
	}
	if before.IsFull() {
		return nil, ErrFull
	}

	if err := m.participants.Insert(ctx, id, userID); err != nil {
		return nil, err
	}

	participants, err := m.participants.List(ctx, id)
	if err != nil {
		// 定員を確認できないので挿入を取り消す
		m.compensate(ctx, id, userID)
		return nil, err
	}

	rank := rankOf(participants, userID)
	if rank < 0 {
		// 挿入直後に取消された
		return nil, ErrNotApplied
	}
	if rank >= recruitment.Capacity {
		logger.Info().
			Str("component", "recruit").
			Int64("recruitment_id", int64(id)).
			Str("user_id", string(userID)).
			Int("rank", rank).
			Int("capacity", recruitment.Capacity).
			Msg("apply lost the race for the last slot, compensating")
		if err := m.compensate(ctx, id, userID); err != nil {
			return nil, err
		}
		return nil, ErrFull
	}

	return NewRoster(recruitment, participants), nil
}

func (m *RosterManager) Cancel(ctx context.Context, id RecruitmentID, userID UserID) (*Roster, error) {
	recruitment, err := m.recruitments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := m.participants.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotApplied
	}

	return m.load(ctx, recruitment)
}

func (m *RosterManager) compensate(ctx context.Context, id RecruitmentID, userID UserID) error {
	// 呼び出し元のctxが切れていても補償は行う
	ctx = context.WithoutCancel(ctx)
	if _, err := m.participants.Delete(ctx, id, userID); err != nil {
		logger.Error().
			Err(err).
			Str("component", "recruit").
			Int64("recruitment_id", int64(id)).
			Str("user_id", string(userID)).
			Msg("failed to compensate participant insert")
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func rankOf(participants []Participant, userID UserID) int {
	for i, p := range participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}
