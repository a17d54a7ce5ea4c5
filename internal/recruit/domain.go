package recruit

import (
	"slices"
	"time"
)

type RecruitmentID int64
type ChannelID string
type ThreadID string
type MessageID string
type UserID string

type Category string

const (
	CategoryGlassRaid Category = "glass_raid"
	CategoryAbyss     Category = "abyss"
)

// CategorySpec はカテゴリごとの選択肢の定義
type CategorySpec struct {
	Category     Category
	DisplayName  string
	Kinds        []string
	Difficulties []string
	Capacities   []int
}

// 備考は全カテゴリ共通
var Notes = []string{
	"時間調整できます",
	"出発時間まで募集します",
}

var categorySpecs = map[Category]*CategorySpec{
	CategoryGlassRaid: {
		Category:     CategoryGlassRaid,
		DisplayName:  "グラスギブネン",
		Difficulties: []string{"入門", "ハード"},
		Capacities:   []int{1, 2, 3, 4, 5, 6, 7},
	},
	CategoryAbyss: {
		Category:     CategoryAbyss,
		DisplayName:  "アビス",
		Kinds:        []string{"沈んだ遺跡", "崩れた祭壇", "破滅の殿堂", "遺跡・祭壇・殿堂"},
		Difficulties: []string{"入門", "ハード", "ベリーハード", "地獄1", "地獄2"},
		Capacities:   []int{1, 2, 3, 4},
	},
}

func Categories() []Category {
	return []Category{CategoryGlassRaid, CategoryAbyss}
}

func SpecOf(category Category) (*CategorySpec, bool) {
	spec, ok := categorySpecs[category]
	return spec, ok
}

func (c Category) Valid() bool {
	_, ok := categorySpecs[c]
	return ok
}

func (c Category) DisplayName() string {
	if spec, ok := categorySpecs[c]; ok {
		return spec.DisplayName
	}
	return string(c)
}

func (spec *CategorySpec) HasKinds() bool {
	return len(spec.Kinds) > 0
}

func (spec *CategorySpec) validate(kind, difficulty string, capacity int, note string) error {
	if spec.HasKinds() && !slices.Contains(spec.Kinds, kind) {
		return invalidOption("kind", kind)
	}
	if !spec.HasKinds() && kind != "" {
		return invalidOption("kind", kind)
	}
	if !slices.Contains(spec.Difficulties, difficulty) {
		return invalidOption("difficulty", difficulty)
	}
	if !slices.Contains(spec.Capacities, capacity) {
		return invalidOption("capacity", capacity)
	}
	if !slices.Contains(Notes, note) {
		return invalidOption("note", note)
	}
	return nil
}

// Recruitment は募集1件分の永続化された情報
// MessageIDは作成直後は空で、要約メッセージ投稿後に設定される
type Recruitment struct {
	ID         RecruitmentID
	Category   Category
	Kind       string
	Difficulty string
	Capacity   int
	StartTime  string
	Note       string
	LeaderID   UserID
	ChannelID  ChannelID
	ThreadID   ThreadID
	MessageID  MessageID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func (r *Recruitment) HasMessage() bool {
	return r.MessageID != ""
}

type Participant struct {
	Seq           int64
	RecruitmentID RecruitmentID
	UserID        UserID
	CreatedAt     time.Time
}

// Roster は募集と応募順の参加者一覧
type Roster struct {
	Recruitment  *Recruitment
	Participants []UserID
}

// NewRoster は応募順に並んだ参加者から名簿を組み立てる
// 定員を超えた分は補償削除待ちの行なので含めない
func NewRoster(recruitment *Recruitment, participants []Participant) *Roster {
	users := make([]UserID, 0, min(len(participants), recruitment.Capacity))
	for _, p := range participants {
		if len(users) >= recruitment.Capacity {
			break
		}
		users = append(users, p.UserID)
	}
	return &Roster{
		Recruitment:  recruitment,
		Participants: users,
	}
}

func (r *Roster) Count() int {
	return len(r.Participants)
}

func (r *Roster) Remaining() int {
	remaining := r.Recruitment.Capacity - r.Count()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (r *Roster) IsFull() bool {
	return r.Count() >= r.Recruitment.Capacity
}

func (r *Roster) Contains(userID UserID) bool {
	return slices.Contains(r.Participants, userID)
}
