package recruit

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	store    *memStore
	platform *fakePlatform
	registry *Registry
	sweeper  *Sweeper
}

func newSweepFixture() *sweepFixture {
	store := newMemStore()
	registry := NewRegistry()
	roster := NewRosterManager(store, store.participantRepo())
	return &sweepFixture{
		store:    store,
		platform: newFakePlatform(),
		registry: registry,
		sweeper:  NewSweeper(store, roster, registry, testChannels()),
	}
}

// seed は募集とスレッド、メッセージを用意する
func (f *sweepFixture) seed(n int, thread *Thread) *Recruitment {
	threadID := ThreadID(fmt.Sprintf("thread-%d", n))
	messageID := MessageID(fmt.Sprintf("message-%d", n))
	r := f.store.add(&Recruitment{
		Category:   CategoryAbyss,
		Kind:       "沈んだ遺跡",
		Difficulty: "入門",
		Capacity:   4,
		StartTime:  "22:00",
		Note:       Notes[1],
		LeaderID:   "leader",
		ChannelID:  "abyss-channel",
		ThreadID:   threadID,
		MessageID:  messageID,
	})
	if thread != nil {
		thread.ID = threadID
		f.platform.addThread(thread)
		f.platform.addMessage(threadID, messageID)
	}
	return r
}

func TestSweeper_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("全件を再登録し停止中の変更を反映する", func(t *testing.T) {
		f := newSweepFixture()
		first := f.seed(1, &Thread{})
		second := f.seed(2, &Thread{})
		// 停止中に応募があった
		require.NoError(t, f.store.participantRepo().Insert(ctx, first.ID, "A"))

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Bound: 2}, report)
		assert.Equal(t, 2, f.registry.Len())

		assert.Equal(t, "1 / 4", f.platform.summary(first.MessageID).CapacityLine)
		assert.Equal(t, "0 / 4", f.platform.summary(second.MessageID).CapacityLine)
	})

	t.Run("削除されたスレッドはスキップして残りを処理する", func(t *testing.T) {
		f := newSweepFixture()
		gone := f.seed(1, nil)
		alive := f.seed(2, &Thread{})

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Bound: 1, Skipped: 1}, report)

		_, ok := f.registry.Get(gone.ID)
		assert.False(t, ok)
		_, ok = f.registry.Get(alive.ID)
		assert.True(t, ok)
	})

	t.Run("アーカイブ/ロック済みのスレッドはスキップ", func(t *testing.T) {
		f := newSweepFixture()
		f.seed(1, &Thread{Archived: true})
		f.seed(2, &Thread{Locked: true})

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Skipped: 2}, report)
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("メッセージIDのない募集と不明なチャンネルはスキップ", func(t *testing.T) {
		f := newSweepFixture()
		f.store.add(&Recruitment{Category: CategoryGlassRaid, Capacity: 1, ChannelID: "glass-channel", ThreadID: "t"})
		f.store.add(&Recruitment{Category: CategoryGlassRaid, Capacity: 1, ChannelID: "other", ThreadID: "t", MessageID: "m"})

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Skipped: 2}, report)
	})

	t.Run("一時的な障害は失敗として数え残りを処理する", func(t *testing.T) {
		f := newSweepFixture()
		broken := f.seed(1, &Thread{})
		f.seed(2, &Thread{})
		f.platform.failFetchThread[broken.ThreadID] = ErrPlatformUnavailable

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Bound: 1, Failed: 1}, report)
	})

	t.Run("要約メッセージが消えている場合はスキップ", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})
		delete(f.platform.messages, r.MessageID)

		report, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		assert.Equal(t, SweepReport{Skipped: 1}, report)
	})

	t.Run("2回実行しても同じ結果になる", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})
		f.seed(2, &Thread{})
		require.NoError(t, f.store.participantRepo().Insert(ctx, r.ID, "A"))

		firstReport, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)
		firstSummary := *f.platform.summary(r.MessageID)

		secondReport, err := f.sweeper.Run(ctx, f.platform)
		require.NoError(t, err)

		assert.Equal(t, firstReport, secondReport)
		assert.Equal(t, 2, f.registry.Len())
		assert.Equal(t, firstSummary, *f.platform.summary(r.MessageID))
		assert.Equal(t, 0, f.platform.posts)

		binding, ok := f.registry.Lookup(r.MessageID)
		require.True(t, ok)
		assert.Equal(t, r.ID, binding.RecruitmentID())
	})
}

func TestSweeper_Reattach(t *testing.T) {
	ctx := context.Background()

	t.Run("登録されていないメッセージのBindingを作る", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})

		binding, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, binding.RecruitmentID())

		again, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
		require.NoError(t, err)
		assert.Same(t, binding, again)
	})

	t.Run("アーカイブ/ロック済みのスレッドには作らない", func(t *testing.T) {
		f := newSweepFixture()
		archived := f.seed(1, &Thread{Archived: true})
		locked := f.seed(2, &Thread{Locked: true})

		for _, r := range []*Recruitment{archived, locked} {
			binding, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
			assert.Nil(t, binding)
			assert.ErrorIs(t, err, ErrBindingNotFound)
			assert.Equal(t, KindNotFound, KindOf(err))
		}
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("指定外チャンネルの募集には作らない", func(t *testing.T) {
		f := newSweepFixture()
		r := f.store.add(&Recruitment{
			Category:  CategoryGlassRaid,
			Capacity:  1,
			ChannelID: "other",
			ThreadID:  "thread-other",
			MessageID: "message-other",
		})
		f.platform.addThread(&Thread{ID: r.ThreadID})
		f.platform.addMessage(r.ThreadID, r.MessageID)

		_, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
		assert.ErrorIs(t, err, ErrBindingNotFound)
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("スレッドが消えていればBindingNotFound", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})
		f.platform.mu.Lock()
		delete(f.platform.threads, r.ThreadID)
		f.platform.mu.Unlock()

		_, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
		assert.ErrorIs(t, err, ErrBindingNotFound)
		assert.ErrorIs(t, err, ErrThreadNotFound)
	})

	t.Run("スレッド取得の一時的な障害はそのまま返す", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})
		f.platform.failFetchThread[r.ThreadID] = ErrPlatformUnavailable

		_, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
		assert.ErrorIs(t, err, ErrPlatformUnavailable)
		assert.NotErrorIs(t, err, ErrBindingNotFound)
		assert.Equal(t, KindTransient, KindOf(err))
		assert.Equal(t, 0, f.registry.Len())
	})

	t.Run("同時に呼ばれても同じBindingを返す", func(t *testing.T) {
		f := newSweepFixture()
		r := f.seed(1, &Thread{})

		const callers = 8
		results := make([]*Binding, callers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				binding, err := f.sweeper.Reattach(ctx, f.platform, r.ThreadID, r.MessageID)
				assert.NoError(t, err)
				results[i] = binding
			}()
		}
		close(start)
		wg.Wait()

		require.NotNil(t, results[0])
		for _, binding := range results[1:] {
			assert.Same(t, results[0], binding)
		}
		registered, ok := f.registry.Lookup(r.MessageID)
		require.True(t, ok)
		assert.Same(t, results[0], registered)
		assert.Equal(t, 1, f.registry.Len())
	})

	t.Run("募集でないメッセージはBindingNotFound", func(t *testing.T) {
		f := newSweepFixture()
		_, err := f.sweeper.Reattach(ctx, f.platform, "thread-x", "message-x")
		assert.ErrorIs(t, err, ErrBindingNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}
