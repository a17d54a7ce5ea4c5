package recruit

import (
	"context"
)

// ストア実装は下記以外の失敗をすべてErrStoreUnavailableで包んで返す
//   - 見つからない場合: ErrRecruitmentNotFound
//   - (recruitment_id, participant_id)の一意制約違反: ErrAlreadyApplied

type RecruitmentRepository interface {
	Create(ctx context.Context, recruitment *Recruitment) (RecruitmentID, error)
	UpdateMessageID(ctx context.Context, id RecruitmentID, messageID MessageID) error
	Get(ctx context.Context, id RecruitmentID) (*Recruitment, error)
	GetByMessage(ctx context.Context, threadID ThreadID, messageID MessageID) (*Recruitment, error)
	List(ctx context.Context) ([]*Recruitment, error)
}

type ParticipantRepository interface {
	// Insert は一意キーで重複を拒否する単一の書き込み
	Insert(ctx context.Context, id RecruitmentID, userID UserID) error
	// Delete は行を削除できた場合にtrueを返す
	Delete(ctx context.Context, id RecruitmentID, userID UserID) (bool, error)
	// List は応募順(seq昇順)で返す
	List(ctx context.Context, id RecruitmentID) ([]Participant, error)
}
