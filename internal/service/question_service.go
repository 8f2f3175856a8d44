package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/repository"
)

// AdminListLimit caps the admin question listing.
const AdminListLimit = 1000

// QuestionStore is the question bank persistence used by the admin workflow.
type QuestionStore interface {
	DuplicateFinder
	GetByID(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context, limit int) ([]model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id string) error
}

// QuestionService handles question bank business logic. Every write goes through the validator.
type QuestionService struct {
	store     QuestionStore
	validator *QuestionValidator
	timeout   time.Duration
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(store QuestionStore, validator *QuestionValidator, timeout time.Duration, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:     store,
		validator: validator,
		timeout:   timeout,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Versions returns the active versions a question may be filed under.
func (s *QuestionService) Versions() []string {
	return s.validator.Versions()
}

// List retrieves up to AdminListLimit questions, newest version first.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	questions, err := s.store.List(ctx, AdminListLimit)
	if err != nil {
		return nil, storeErr("list questions", err)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// Get retrieves a single question.
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storeErr("get question", err)
	}
	return q, nil
}

// Create validates the form and inserts a new question with a fresh ID.
func (s *QuestionService) Create(ctx context.Context, form model.QuestionForm) (*model.Question, error) {
	q, err := s.validator.Validate(ctx, form, "")
	if err != nil {
		s.logRejection(err, "")
		return nil, err
	}

	q.ID = uuid.NewString()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Create(ctx, q); err != nil {
		return nil, storeErr("insert question", err)
	}

	s.log.Info().Str("question_id", q.ID).Str("version", q.Version).Msg("Question created")
	return q, nil
}

// Update validates the form against every other question and overwrites question id.
func (s *QuestionService) Update(ctx context.Context, id string, form model.QuestionForm) (*model.Question, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	q, err := s.validator.Validate(ctx, form, id)
	if err != nil {
		s.logRejection(err, id)
		return nil, err
	}
	q.ID = id

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storeErr("update question", err)
	}

	s.log.Info().Str("question_id", q.ID).Str("version", q.Version).Msg("Question updated")
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return storeErr("delete question", err)
	}

	s.log.Info().Str("question_id", id).Msg("Question deleted")
	return nil
}

func (s *QuestionService) logRejection(err error, id string) {
	if ve, ok := AsValidationError(err); ok {
		s.log.Debug().Str("kind", string(ve.Kind)).Str("question_id", id).Msg("Question rejected")
		return
	}
	s.log.Error().Err(err).Str("question_id", id).Msg("Question validation failed")
}

func (s *QuestionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
