package service

import (
	"context"
	"math/rand"
	"sync"

	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/repository"
)

/* ---------------- In-memory question store satisfying every store interface ---------------- */

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[string]model.Question
	order     []string
	// err, when set, is returned by every call to simulate an unreachable store.
	err error
	// createManyErr fails only bulk inserts, after any delete has already run.
	createManyErr error
	commits       int
	rollbacks     int
	dupLookups    int
	sampleCalls   int
	lastVersions  []string
}

func newFakeQuestionStore(qs ...model.Question) *fakeQuestionStore {
	s := &fakeQuestionStore{questions: map[string]model.Question{}}
	for _, q := range qs {
		s.put(q)
	}
	return s
}

func (s *fakeQuestionStore) put(q model.Question) {
	if _, ok := s.questions[q.ID]; !ok {
		s.order = append(s.order, q.ID)
	}
	s.questions[q.ID] = q
}

func (s *fakeQuestionStore) GetByID(_ context.Context, id string) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	q, ok := s.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

func (s *fakeQuestionStore) ExistsByVersionAndText(_ context.Context, version, text, excludingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dupLookups++
	if s.err != nil {
		return false, s.err
	}
	for _, q := range s.questions {
		if q.Version == version && q.Text == text && (excludingID == "" || q.ID != excludingID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeQuestionStore) Sample(_ context.Context, versions []string, count int) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleCalls++
	s.lastVersions = versions
	if s.err != nil {
		return nil, s.err
	}

	allowed := map[string]bool{}
	for _, v := range versions {
		allowed[v] = true
	}
	var pool []model.Question
	for _, id := range s.order {
		q := s.questions[id]
		if len(versions) == 0 || allowed[q.Version] {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

func (s *fakeQuestionStore) List(_ context.Context, limit int) ([]model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Question
	for _, id := range s.order {
		if len(out) == limit {
			break
		}
		out = append(out, s.questions[id])
	}
	return out, nil
}

func (s *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.put(*q)
	return nil
}

func (s *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	s.questions[q.ID] = *q
	return nil
}

func (s *fakeQuestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.questions, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeQuestionStore) ListTextsByVersion(_ context.Context, version string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var texts []string
	for _, q := range s.questions {
		if q.Version == version {
			texts = append(texts, q.Text)
		}
	}
	return texts, nil
}

func (s *fakeQuestionStore) DeleteByVersion(_ context.Context, version string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	kept := s.order[:0]
	for _, id := range s.order {
		if s.questions[id].Version == version {
			delete(s.questions, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return n, nil
}

func (s *fakeQuestionStore) CreateMany(_ context.Context, qs []model.Question) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if s.createManyErr != nil {
		return 0, s.createManyErr
	}
	for _, q := range qs {
		s.put(q)
	}
	return int64(len(qs)), nil
}

// WithBulkTx snapshots the store and restores it when fn fails.
func (s *fakeQuestionStore) WithBulkTx(_ context.Context, fn func(repository.BulkWriter) error) error {
	s.mu.Lock()
	questions := make(map[string]model.Question, len(s.questions))
	for id, q := range s.questions {
		questions[id] = q
	}
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.questions, s.order = questions, order
		s.rollbacks++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

type fakeAnswerLog struct {
	mu      sync.Mutex
	entries []model.AnswerLogEntry
	err     error
}

func (f *fakeAnswerLog) Enqueue(_ context.Context, e model.AnswerLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func validForm() model.QuestionForm {
	return model.QuestionForm{
		Version:  "12",
		Question: "Which protocol is used to securely browse websites?",
		Opt1:     "HTTP",
		Opt2:     "FTP",
		Opt3:     "SSH",
		Opt4:     "HTTPS",
		Correct:  "HTTPS",
		Topic:    "Network Security",
	}
}
