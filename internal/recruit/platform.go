package recruit

import "context"

// Thread は募集スレッドの状態
type Thread struct {
	ID       ThreadID
	Archived bool
	Locked   bool
}

func (t *Thread) ReadOnly() bool {
	return t.Archived || t.Locked
}

// Message は要約とボタンが付いたメッセージへの参照
type Message struct {
	ThreadID ThreadID
	ID       MessageID
}

// Platform はチャットプラットフォームに対する操作
// 存在しない/アクセスできない場合はErrThreadNotFound, ErrMessageNotFoundを、
// それ以外の失敗はErrPlatformUnavailableを包んで返す
type Platform interface {
	CreateThread(ctx context.Context, channelID ChannelID, name string) (ThreadID, error)
	DeleteThread(ctx context.Context, threadID ThreadID) error
	FetchThread(ctx context.Context, threadID ThreadID) (*Thread, error)
	FetchMessage(ctx context.Context, threadID ThreadID, messageID MessageID) (*Message, error)
	// PostSummary は要約と応募/取消ボタンを投稿する
	PostSummary(ctx context.Context, threadID ThreadID, summary *Summary) (MessageID, error)
	// EditSummary は本文を差し替え、同じ2つのボタンを付け直す
	EditSummary(ctx context.Context, message *Message, summary *Summary) error
}

type Notice int

const (
	NoticeApplied Notice = iota
	NoticeCanceled
	NoticeAlreadyApplied
	NoticeNotApplied
	NoticeFull
	NoticeApplyFailed
	NoticeCancelFailed
)

// Responder はボタンを押したユーザーにだけ見える通知を返す
type Responder interface {
	Notify(ctx context.Context, notice Notice) error
}
