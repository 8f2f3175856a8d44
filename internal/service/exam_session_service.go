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

// QuestionSampler is the read side of the question store used while taking an exam.
type QuestionSampler interface {
	// Sample draws up to count questions at random without replacement. An empty
	// versions slice means every version is eligible. A small pool returns fewer rows.
	Sample(ctx context.Context, versions []string, count int) ([]model.Question, error)
	GetByID(ctx context.Context, id string) (*model.Question, error)
}

// ExamSessionService owns the lifecycle of exam attempts: Idle -> Active -> Idle.
// Reaching answered == total does not end the session; the client decides when it is done.
type ExamSessionService struct {
	questions    QuestionSampler
	sessions     SessionStore
	answerLog    AnswerLogQueue
	defaultCount int
	timeout      time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewExamSessionService creates a new ExamSessionService. answerLog may be nil.
func NewExamSessionService(
	questions QuestionSampler,
	sessions SessionStore,
	answerLog AnswerLogQueue,
	defaultCount int,
	timeout time.Duration,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		questions:    questions,
		sessions:     sessions,
		answerLog:    answerLog,
		defaultCount: defaultCount,
		timeout:      timeout,
		log:          log.With().Str("component", "exam_session_service").Logger(),
		now:          time.Now,
	}
}

// Start draws a fresh question set and (re)initializes the caller's session. A token is
// reused only while it names a live session, whose prior state is then discarded; any
// other token is replaced by a newly issued one so clients cannot pick their own keys.
// TotalQuestions is the number of questions actually drawn, which may be below count.
func (s *ExamSessionService) Start(ctx context.Context, token string, versions []string, count int) (*model.StartedExam, error) {
	if count <= 0 {
		count = s.defaultCount
	}
	if token != "" {
		live, err := s.isLive(ctx, token)
		if err != nil {
			return nil, err
		}
		if !live {
			token = ""
		}
	}
	if token == "" {
		token = uuid.NewString()
	}

	sampleCtx, cancel := s.withTimeout(ctx)
	drawn, err := s.questions.Sample(sampleCtx, versions, count)
	cancel()
	if err != nil {
		return nil, storeErr("sample questions", err)
	}

	sess := &model.ExamSession{
		Token:          token,
		StartedAt:      s.now(),
		TotalQuestions: len(drawn),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	questions := make([]model.ExamQuestion, len(drawn))
	for i := range drawn {
		questions[i] = drawn[i].ForExam()
	}

	s.log.Info().
		Strs("versions", versions).
		Int("requested", count).
		Int("drawn", len(drawn)).
		Msg("Exam started")

	return &model.StartedExam{
		SessionToken: token,
		StartedAt:    sess.StartedAt,
		Total:        sess.TotalQuestions,
		Questions:    questions,
	}, nil
}

// RecordAnswer classifies answer against the stored correct option and marks questionID
// answered. Resubmitting a question never counts twice. An unknown question is wrong.
// Membership in the drawn set is not checked.
func (s *ExamSessionService) RecordAnswer(ctx context.Context, token, questionID, answer string) (*model.AnswerOutcome, error) {
	if _, err := s.sessions.Get(ctx, token); err != nil {
		return nil, err
	}

	result := model.AnswerWrong
	lookupCtx, cancel := s.withTimeout(ctx)
	q, err := s.questions.GetByID(lookupCtx, questionID)
	cancel()
	switch {
	case err == nil:
		if q.Correct == answer {
			result = model.AnswerCorrect
		}
	case errors.Is(err, repository.ErrNotFound):
		// Unknown questions stay wrong.
	default:
		return nil, storeErr("lookup question", err)
	}

	sess, err := s.sessions.MarkAnswered(ctx, token, questionID)
	if err != nil {
		return nil, err
	}

	s.enqueueAnswer(ctx, token, questionID, answer, result)

	return &model.AnswerOutcome{
		Result: result,
		Progress: model.Progress{
			Answered: sess.AnsweredCount,
			Total:    sess.TotalQuestions,
		},
	}, nil
}

// Status reports whether a session is active for token and, if so, its progress.
func (s *ExamSessionService) Status(ctx context.Context, token string) (*model.ExamStatus, error) {
	if token == "" {
		return &model.ExamStatus{Active: false}, nil
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &model.ExamStatus{Active: false}, nil
		}
		return nil, err
	}

	startedAt := sess.StartedAt
	return &model.ExamStatus{
		Active:    true,
		StartedAt: &startedAt,
		Progress: &model.Progress{
			Answered: sess.AnsweredCount,
			Total:    sess.TotalQuestions,
		},
	}, nil
}

// Clear discards the session. Clearing an idle session succeeds.
func (s *ExamSessionService) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *ExamSessionService) enqueueAnswer(ctx context.Context, token, questionID, answer string, result model.AnswerResult) {
	if s.answerLog == nil {
		return
	}
	entry := model.AnswerLogEntry{
		SessionToken: token,
		QuestionID:   questionID,
		Answer:       answer,
		Result:       result,
		AnsweredAt:   s.now().UTC(),
	}
	if err := s.answerLog.Enqueue(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("question_id", questionID).Msg("Failed to queue answer log")
	}
}

func (s *ExamSessionService) isLive(ctx context.Context, token string) (bool, error) {
	_, err := s.sessions.Get(ctx, token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSessionNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *ExamSessionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
