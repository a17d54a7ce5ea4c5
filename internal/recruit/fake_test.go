package recruit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore はRecruitmentRepositoryとParticipantRepositoryのインメモリ実装
type memStore struct {
	mu           sync.Mutex
	nextID       RecruitmentID
	nextSeq      int64
	recruitments map[RecruitmentID]*Recruitment
	participants []Participant

	// テストから割り込みや障害を差し込むためのフック
	beforeInsert func(id RecruitmentID, userID UserID)
	beforeUpdate func(id RecruitmentID, messageID MessageID)
	failList     error
	failCreate   error
	failUpdate   error
	listCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		recruitments: make(map[RecruitmentID]*Recruitment),
	}
}

func (s *memStore) add(r *Recruitment) *Recruitment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	copied := *r
	s.recruitments[r.ID] = &copied
	return r
}

func (s *memStore) Create(ctx context.Context, r *Recruitment) (RecruitmentID, error) {
	if s.failCreate != nil {
		return 0, s.failCreate
	}
	return s.add(r).ID, nil
}

func (s *memStore) UpdateMessageID(ctx context.Context, id RecruitmentID, messageID MessageID) error {
	if s.beforeUpdate != nil {
		s.beforeUpdate(id, messageID)
	}
	if s.failUpdate != nil {
		return s.failUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recruitments[id]
	if !ok {
		return ErrRecruitmentNotFound
	}
	r.MessageID = messageID
	return nil
}

func (s *memStore) Get(ctx context.Context, id RecruitmentID) (*Recruitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recruitments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecruitmentNotFound, id)
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) GetByMessage(ctx context.Context, threadID ThreadID, messageID MessageID) (*Recruitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recruitments {
		if r.ThreadID == threadID && r.MessageID == messageID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ErrRecruitmentNotFound
}

func (s *memStore) List(ctx context.Context) ([]*Recruitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Recruitment, 0, len(s.recruitments))
	for _, r := range s.recruitments {
		copied := *r
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memStore) participantRepo() ParticipantRepository {
	return (*memParticipants)(s)
}

type memParticipants memStore

func (p *memParticipants) Insert(ctx context.Context, id RecruitmentID, userID UserID) error {
	s := (*memStore)(p)
	if s.beforeInsert != nil {
		hook := s.beforeInsert
		s.beforeInsert = nil
		hook(id, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.participants {
		if row.RecruitmentID == id && row.UserID == userID {
			return ErrAlreadyApplied
		}
	}
	s.nextSeq++
	s.participants = append(s.participants, Participant{
		Seq:           s.nextSeq,
		RecruitmentID: id,
		UserID:        userID,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (p *memParticipants) Delete(ctx context.Context, id RecruitmentID, userID UserID) (bool, error) {
	s := (*memStore)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.participants {
		if row.RecruitmentID == id && row.UserID == userID {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (p *memParticipants) List(ctx context.Context, id RecruitmentID) ([]Participant, error) {
	s := (*memStore)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failList != nil {
		return nil, s.failList
	}
	var rows []Participant
	for _, row := range s.participants {
		if row.RecruitmentID == id {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *memStore) rowCount(id RecruitmentID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.participants {
		if row.RecruitmentID == id {
			n++
		}
	}
	return n
}

// fakePlatform はPlatformのインメモリ実装
type fakePlatform struct {
	mu         sync.Mutex
	nextID     int
	threads    map[ThreadID]*Thread
	messages   map[MessageID]ThreadID
	summaries  map[MessageID]*Summary
	edits      map[MessageID]int
	posts      int
	deleted    []ThreadID
	fetchCalls int

	failCreateThread error
	failPost         error
	failEdit         error
	failFetchThread  map[ThreadID]error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		threads:         make(map[ThreadID]*Thread),
		messages:        make(map[MessageID]ThreadID),
		summaries:       make(map[MessageID]*Summary),
		edits:           make(map[MessageID]int),
		failFetchThread: make(map[ThreadID]error),
	}
}

func (p *fakePlatform) addThread(thread *Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threads[thread.ID] = thread
}

func (p *fakePlatform) addMessage(threadID ThreadID, messageID MessageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[messageID] = threadID
}

func (p *fakePlatform) summary(messageID MessageID) *Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summaries[messageID]
}

func (p *fakePlatform) CreateThread(ctx context.Context, channelID ChannelID, name string) (ThreadID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCreateThread != nil {
		return "", p.failCreateThread
	}
	p.nextID++
	id := ThreadID(fmt.Sprintf("thread-%d", p.nextID))
	p.threads[id] = &Thread{ID: id}
	return id, nil
}

func (p *fakePlatform) DeleteThread(ctx context.Context, threadID ThreadID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.threads, threadID)
	p.deleted = append(p.deleted, threadID)
	return nil
}

func (p *fakePlatform) FetchThread(ctx context.Context, threadID ThreadID) (*Thread, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failFetchThread[threadID]; err != nil {
		return nil, err
	}
	thread, ok := p.threads[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	copied := *thread
	return &copied, nil
}

func (p *fakePlatform) FetchMessage(ctx context.Context, threadID ThreadID, messageID MessageID) (*Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchCalls++
	owner, ok := p.messages[messageID]
	if !ok || owner != threadID {
		return nil, ErrMessageNotFound
	}
	return &Message{ThreadID: threadID, ID: messageID}, nil
}

func (p *fakePlatform) PostSummary(ctx context.Context, threadID ThreadID, summary *Summary) (MessageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPost != nil {
		return "", p.failPost
	}
	p.nextID++
	p.posts++
	id := MessageID(fmt.Sprintf("message-%d", p.nextID))
	p.messages[id] = threadID
	p.summaries[id] = summary
	return id, nil
}

func (p *fakePlatform) EditSummary(ctx context.Context, message *Message, summary *Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failEdit != nil {
		return p.failEdit
	}
	if _, ok := p.messages[message.ID]; !ok {
		return ErrMessageNotFound
	}
	p.summaries[message.ID] = summary
	p.edits[message.ID]++
	return nil
}

type recordingResponder struct {
	mu      sync.Mutex
	notices []Notice
	err     error
}

func (r *recordingResponder) Notify(ctx context.Context, notice Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	return r.err
}

func (r *recordingResponder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return -1
	}
	return r.notices[len(r.notices)-1]
}

var errBoom = errors.New("boom")

func testChannels() map[Category]ChannelID {
	return map[Category]ChannelID{
		CategoryGlassRaid: "glass-channel",
		CategoryAbyss:     "abyss-channel",
	}
}
