package recruit

import (
	"errors"
	"fmt"
)

var (
	// 入力検証
	ErrInvalidStartTime = errors.New("出発時間は24時間形式(例: 00:00)で入力してください")
	ErrWrongChannel     = errors.New("このコマンドは指定されたチャンネルでのみ使用できます")
	ErrInvalidOption    = errors.New("選択肢にない値です")

	// 名簿操作の競合
	ErrAlreadyApplied = errors.New("既に応募済みです")
	ErrNotApplied     = errors.New("応募していません")
	ErrFull           = errors.New("募集人数に達しています")

	// 参照先が存在しない
	ErrRecruitmentNotFound = errors.New("募集が見つかりません")
	ErrThreadNotFound      = errors.New("スレッドが見つかりません")
	ErrMessageNotFound     = errors.New("募集メッセージが見つかりません")
	ErrBindingNotFound     = errors.New("募集ボタンが登録されていません")

	// 一時的な障害
	ErrStoreUnavailable    = errors.New("ストアに接続できません")
	ErrPlatformUnavailable = errors.New("Discordに接続できません")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// KindOf はエラーを分類する。分類できない場合はKindUnknown
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidStartTime),
		errors.Is(err, ErrWrongChannel),
		errors.Is(err, ErrInvalidOption):
		return KindValidation
	case errors.Is(err, ErrAlreadyApplied),
		errors.Is(err, ErrNotApplied),
		errors.Is(err, ErrFull):
		return KindConflict
	case errors.Is(err, ErrRecruitmentNotFound),
		errors.Is(err, ErrThreadNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrBindingNotFound):
		return KindNotFound
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrPlatformUnavailable):
		return KindTransient
	default:
		return KindUnknown
	}
}

// StoreError はストア実装が下位のエラーをErrStoreUnavailableとして包むためのヘルパー
func StoreError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}

func invalidOption(name string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidOption, name, value)
}
