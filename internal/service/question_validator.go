package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stemsi/cybertest-backend/internal/model"
)

// MinQuestionLength is the minimum question text length, in characters, after trimming.
const MinQuestionLength = 10

// MinOptions is the minimum number of non-empty options a question must carry.
const MinOptions = 2

// DuplicateFinder answers whether a question text is already taken within a version.
type DuplicateFinder interface {
	ExistsByVersionAndText(ctx context.Context, version, text, excludingID string) (bool, error)
}

// QuestionValidator checks a proposed question's shape and rejects duplicates within a version.
//
// The duplicate check is check-then-act: two concurrent inserts of the same text can both pass.
// This is accepted for the low-contention admin workflow.
type QuestionValidator struct {
	versions []string
	allowed  map[string]struct{}
	store    DuplicateFinder
	timeout  time.Duration
}

// NewQuestionValidator creates a validator for the given active versions.
func NewQuestionValidator(versions []string, store DuplicateFinder, timeout time.Duration) *QuestionValidator {
	allowed := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		allowed[v] = struct{}{}
	}
	return &QuestionValidator{
		versions: versions,
		allowed:  allowed,
		store:    store,
		timeout:  timeout,
	}
}

// Versions returns the active version set in configured order.
func (v *QuestionValidator) Versions() []string {
	return v.versions
}

// IsAllowedVersion reports whether version is active.
func (v *QuestionValidator) IsAllowedVersion(version string) bool {
	_, ok := v.allowed[version]
	return ok
}

// Validate normalizes form and returns the question ready to be stored. The returned question
// has no ID; callers assign one on insert and keep the existing one on update.
// excludingID is the question being edited, or empty on create.
func (v *QuestionValidator) Validate(ctx context.Context, form model.QuestionForm, excludingID string) (*model.Question, error) {
	q := normalizeForm(form)

	if q.Version == "" || !v.IsAllowedVersion(q.Version) {
		return nil, rejectf(InvalidVersion, "Please select a valid version.")
	}
	if err := checkStructure(q); err != nil {
		return nil, err
	}

	// Local checks above run first so a malformed form never costs a store round-trip.
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	dup, err := v.store.ExistsByVersionAndText(ctx, q.Version, q.Text, strings.TrimSpace(excludingID))
	if err != nil {
		return nil, storeErr("check duplicate question", err)
	}
	if dup {
		return nil, rejectf(DuplicateQuestion, "A question with the same text already exists for this version.")
	}

	return q, nil
}

// normalizeForm trims every field and collects the non-empty options in order.
// Duplicate options are kept.
func normalizeForm(form model.QuestionForm) *model.Question {
	raw := form.RawOptions()
	options := make([]string, 0, len(raw))
	for _, opt := range raw {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			options = append(options, trimmed)
		}
	}

	return &model.Question{
		Version: strings.TrimSpace(form.Version),
		Text:    strings.TrimSpace(form.Question),
		Options: options,
		Correct: strings.TrimSpace(form.Correct),
		Topic:   strings.TrimSpace(form.Topic),
	}
}

// checkStructure validates text length, option count and the correct answer.
func checkStructure(q *model.Question) error {
	if q.Text == "" || utf8.RuneCountInString(q.Text) < MinQuestionLength {
		return rejectf(QuestionTooShort, "Please provide a longer question text (at least %d characters).", MinQuestionLength)
	}
	if len(q.Options) < MinOptions {
		return rejectf(InsufficientOptions, "Please provide at least %d non-empty options.", MinOptions)
	}
	if q.Correct == "" {
		return rejectf(CorrectNotInOptions, "Please select the correct option.")
	}
	for _, opt := range q.Options {
		if opt == q.Correct {
			return nil
		}
	}
	return rejectf(CorrectNotInOptions, "The correct option must match one of the provided options.")
}
