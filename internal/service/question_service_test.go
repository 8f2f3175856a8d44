package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func newTestQuestionService(store *fakeQuestionStore) *QuestionService {
	return NewQuestionService(store, NewQuestionValidator([]string{"12"}, store, 0), 0, zerolog.Nop())
}

func TestQuestionService_CreateAssignsID(t *testing.T) {
	store := newFakeQuestionStore()
	svc := newTestQuestionService(store)

	q, err := svc.Create(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if q.ID == "" {
		t.Fatal("Create should assign an ID")
	}
	stored, err := svc.Get(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Correct != "HTTPS" || len(stored.Options) != 4 {
		t.Fatalf("stored %+v", stored)
	}

	if _, err := svc.Create(context.Background(), validForm()); err == nil {
		t.Fatal("second create with the same text should be rejected")
	} else {
		expectKind(t, err, DuplicateQuestion)
	}
}

func TestQuestionService_UpdatePreservesID(t *testing.T) {
	store := newFakeQuestionStore()
	svc := newTestQuestionService(store)
	ctx := context.Background()

	q, _ := svc.Create(ctx, validForm())

	form := validForm()
	form.Topic = "Web"
	form.Correct = "SSH"
	updated, err := svc.Update(ctx, q.ID, form)
	if err != nil {
		t.Fatalf("Update with unchanged text: %v", err)
	}
	if updated.ID != q.ID || updated.Topic != "Web" || updated.Correct != "SSH" {
		t.Fatalf("updated %+v", updated)
	}
}

func TestQuestionService_UpdateRejectsOtherDuplicate(t *testing.T) {
	store := newFakeQuestionStore()
	svc := newTestQuestionService(store)
	ctx := context.Background()

	_, _ = svc.Create(ctx, validForm())
	other := validForm()
	other.Question = "Which tool is commonly used for packet sniffing?"
	second, err := svc.Create(ctx, other)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, second.ID, validForm())
	expectKind(t, err, DuplicateQuestion)
}

func TestQuestionService_NotFound(t *testing.T) {
	svc := newTestQuestionService(newFakeQuestionStore())
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("Get: err = %v", err)
	}
	if _, err := svc.Update(ctx, "missing", validForm()); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("Update: err = %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("Delete: err = %v", err)
	}
}

func TestQuestionService_StoreUnavailable(t *testing.T) {
	store := newFakeQuestionStore()
	svc := newTestQuestionService(store)
	store.err = errors.New("connection reset")
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("List: err = %v", err)
	}
	if _, err := svc.Get(ctx, "x"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Get: err = %v", err)
	}
	if err := svc.Delete(ctx, "x"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Delete: err = %v", err)
	}
}

func TestQuestionService_ListNeverNil(t *testing.T) {
	svc := newTestQuestionService(newFakeQuestionStore())
	qs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if qs == nil {
		t.Fatal("List should return an empty slice, not nil")
	}
	if got := svc.Versions(); len(got) != 1 || got[0] != "12" {
		t.Fatalf("Versions = %v", got)
	}
}
