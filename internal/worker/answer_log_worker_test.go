package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/model"
)

type fakeSink struct {
	entries []model.AnswerLogEntry
	err     error
}

func (f *fakeSink) Insert(_ context.Context, e *model.AnswerLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func newTestWorker(sink AnswerLogSink) *AnswerLogWorker {
	return NewAnswerLogWorker(sink, nil, zerolog.Nop())
}

func TestHandle_PersistsDecodedEntry(t *testing.T) {
	sink := &fakeSink{}
	w := newTestWorker(sink)

	raw := `{"session_token":"tok","question_id":"q1","answer":"A","result":"correct","answered_at":"2026-01-02T03:04:05Z"}`
	if err := w.handle(context.Background(), raw); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	got := sink.entries[0]
	if got.SessionToken != "tok" || got.QuestionID != "q1" || got.Result != model.AnswerCorrect {
		t.Errorf("unexpected entry: %+v", got)
	}
	if !got.AnsweredAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("answered_at = %v", got.AnsweredAt)
	}
}

func TestHandle_DropsMalformedItems(t *testing.T) {
	sink := &fakeSink{}
	w := newTestWorker(sink)

	for _, raw := range []string{`not json`, `{"question_id":"q1"}`, `{"session_token":"tok"}`} {
		if err := w.handle(context.Background(), raw); err != nil {
			t.Errorf("handle(%q) should drop, got error %v", raw, err)
		}
	}
	if len(sink.entries) != 0 {
		t.Errorf("expected nothing persisted, got %d", len(sink.entries))
	}
}

func TestHandle_DefaultsMissingTimestamp(t *testing.T) {
	sink := &fakeSink{}
	w := newTestWorker(sink)

	if err := w.handle(context.Background(), `{"session_token":"tok","question_id":"q1","result":"wrong"}`); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sink.entries[0].AnsweredAt.IsZero() {
		t.Error("expected answered_at to be filled in")
	}
}

func TestHandle_ReturnsSinkError(t *testing.T) {
	sinkErr := errors.New("db down")
	w := newTestWorker(&fakeSink{err: sinkErr})

	err := w.handle(context.Background(), `{"session_token":"tok","question_id":"q1"}`)
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
