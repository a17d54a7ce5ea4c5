package recruit

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/logger"
	"sync"
)

type action int

const (
	actionApply action = iota
	actionCancel
)

func (a action) String() string {
	if a == actionApply {
		return "apply"
	}
	return "cancel"
}

// Binding は募集メッセージと応募/取消ボタンの処理を結びつける
type Binding struct {
	recruitmentID RecruitmentID
	category      Category
	threadID      ThreadID
	messageID     MessageID

	platform Platform
	roster   *RosterManager

	// mu はmessageのキャッシュとメッセージ編集を直列化する
	mu      sync.Mutex
	message *Message
}

func NewBinding(recruitment *Recruitment, platform Platform, roster *RosterManager) *Binding {
	return &Binding{
		recruitmentID: recruitment.ID,
		category:      recruitment.Category,
		threadID:      recruitment.ThreadID,
		messageID:     recruitment.MessageID,
		platform:      platform,
		roster:        roster,
	}
}

func (b *Binding) RecruitmentID() RecruitmentID {
	return b.recruitmentID
}

func (b *Binding) Category() Category {
	return b.category
}

func (b *Binding) MessageID() MessageID {
	return b.messageID
}

func (b *Binding) ThreadID() ThreadID {
	return b.threadID
}

// Apply は応募ボタンの処理
// 競合(満員・応募済み)は通知のみでnilを返す。想定外の失敗は汎用の通知後にエラーを返す
func (b *Binding) Apply(ctx context.Context, userID UserID, responder Responder) error {
	return b.activate(ctx, actionApply, userID, responder)
}

// Cancel は取消ボタンの処理
func (b *Binding) Cancel(ctx context.Context, userID UserID, responder Responder) error {
	return b.activate(ctx, actionCancel, userID, responder)
}

func (b *Binding) activate(ctx context.Context, act action, userID UserID, responder Responder) error {
	if _, err := b.resolveMessage(ctx); err != nil {
		return b.fail(ctx, act, responder, err)
	}

	var (
		roster *Roster
		err    error
	)
	switch act {
	case actionApply:
		roster, err = b.roster.Apply(ctx, b.recruitmentID, userID)
	case actionCancel:
		roster, err = b.roster.Cancel(ctx, b.recruitmentID, userID)
	}

	if err != nil {
		if notice, ok := conflictNotice(err); ok {
			logger.Info().
				Str("component", "recruit").
				Int64("recruitment_id", int64(b.recruitmentID)).
				Str("user_id", string(userID)).
				Str("action", act.String()).
				Str("reason", err.Error()).
				Msg("activation rejected")
			return responder.Notify(ctx, notice)
		}
		return b.fail(ctx, act, responder, err)
	}

	logger.Info().
		Str("component", "recruit").
		Int64("recruitment_id", int64(b.recruitmentID)).
		Str("user_id", string(userID)).
		Str("action", act.String()).
		Int("remaining", roster.Remaining()).
		Msg("roster updated")

	notice := NoticeApplied
	if act == actionCancel {
		notice = NoticeCanceled
	}
	if err := responder.Notify(ctx, notice); err != nil {
		logger.Warn().
			Err(err).
			Str("component", "recruit").
			Int64("recruitment_id", int64(b.recruitmentID)).
			Msg("failed to notify user")
	}

	if err := b.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh summary after %s: %w", act, err)
	}
	return nil
}

// Refresh はストアから名簿を読み直して要約を描き直す
// ロック内で読み直すので、最後の編集が常に最新の状態を反映する
func (b *Binding) Refresh(ctx context.Context) error {
	message, err := b.resolveMessage(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	roster, err := b.roster.Load(ctx, b.recruitmentID)
	if err != nil {
		return err
	}

	if err := b.platform.EditSummary(ctx, message, Render(roster)); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			// 次回は取得し直す
			b.message = nil
		}
		return err
	}
	return nil
}

func (b *Binding) resolveMessage(ctx context.Context) (*Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.message != nil {
		return b.message, nil
	}

	message, err := b.platform.FetchMessage(ctx, b.threadID, b.messageID)
	if err != nil {
		return nil, err
	}
	b.message = message
	return message, nil
}

func (b *Binding) fail(ctx context.Context, act action, responder Responder, err error) error {
	notice := NoticeApplyFailed
	if act == actionCancel {
		notice = NoticeCancelFailed
	}
	if notifyErr := responder.Notify(ctx, notice); notifyErr != nil {
		err = errors.Join(err, notifyErr)
	}
	return fmt.Errorf("failed to %s recruitment %d: %w", act, b.recruitmentID, err)
}

func conflictNotice(err error) (Notice, bool) {
	switch {
	case errors.Is(err, ErrAlreadyApplied):
		return NoticeAlreadyApplied, true
	case errors.Is(err, ErrNotApplied):
		return NoticeNotApplied, true
	case errors.Is(err, ErrFull):
		return NoticeFull, true
	default:
		return 0, false
	}
}

// Registry は募集IDごとのBindingを保持する。メッセージIDからも引ける
type Registry struct {
	mu        sync.RWMutex
	bindings  map[RecruitmentID]*Binding
	byMessage map[MessageID]RecruitmentID
}

func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[RecruitmentID]*Binding),
		byMessage: make(map[MessageID]RecruitmentID),
	}
}

// Register は同じ募集のBindingがあれば置き換える
func (r *Registry) Register(binding *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.bindings[binding.recruitmentID]; ok {
		delete(r.byMessage, old.messageID)
	}
	r.bindings[binding.recruitmentID] = binding
	r.byMessage[binding.messageID] = binding.recruitmentID
}

// LoadOrRegister は同じ募集・同じメッセージのBindingが登録済みならそれを返し、なければbindingを登録して返す
func (r *Registry) LoadOrRegister(binding *Binding) *Binding {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bindings[binding.recruitmentID]; ok {
		if existing.messageID == binding.messageID {
			return existing
		}
		delete(r.byMessage, existing.messageID)
	}
	r.bindings[binding.recruitmentID] = binding
	r.byMessage[binding.messageID] = binding.recruitmentID
	return binding
}

// Remove はbindingが登録中のものと同一のときだけ取り除く
func (r *Registry) Remove(binding *Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.bindings[binding.recruitmentID]; ok && current == binding {
		delete(r.bindings, binding.recruitmentID)
		delete(r.byMessage, binding.messageID)
	}
}

func (r *Registry) Get(id RecruitmentID) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.bindings[id]
	return binding, ok
}

func (r *Registry) Lookup(messageID MessageID) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byMessage[messageID]
	if !ok {
		return nil, false
	}
	binding, ok := r.bindings[id]
	return binding, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
