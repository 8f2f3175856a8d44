package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/repository"
)

var requiredColumns = []string{"question", "option1", "option2", "correct"}

// ImportStore is the bulk side of the question store used by imports. Everything one
// import writes goes through a single transaction.
type ImportStore interface {
	WithBulkTx(ctx context.Context, fn func(repository.BulkWriter) error) error
}

// ImportResult summarizes one CSV import.
type ImportResult struct {
	Version  string
	Replaced int64
	Inserted int64
	Skipped  int
}

// QuestionImporter loads questions from CSV into a single version of the bank.
type QuestionImporter struct {
	store   ImportStore
	version string
	log     zerolog.Logger
}

// NewQuestionImporter creates an importer writing to version.
func NewQuestionImporter(store ImportStore, version string, log zerolog.Logger) *QuestionImporter {
	return &QuestionImporter{
		store:   store,
		version: version,
		log:     log.With().Str("component", "question_importer").Logger(),
	}
}

// Import reads every row of r, validates it, and inserts rows whose text is not already
// present in the version. With replace set, the version is emptied first.
// Any invalid row aborts the import before the store is touched, and a failed write
// leaves the version as it was.
func (i *QuestionImporter) Import(ctx context.Context, r io.Reader, replace bool) (*ImportResult, error) {
	questions, err := i.parse(r)
	if err != nil {
		return nil, err
	}
	return i.load(ctx, questions, replace)
}

// ImportForms validates already-structured forms and loads them like Import. The forms'
// own Version fields are ignored in favour of the importer's version.
func (i *QuestionImporter) ImportForms(ctx context.Context, forms []model.QuestionForm, replace bool) (*ImportResult, error) {
	questions := make([]model.Question, 0, len(forms))
	for n, form := range forms {
		form.Version = i.version
		q := normalizeForm(form)
		if err := checkStructure(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", n+1, err)
		}
		q.ID = uuid.NewString()
		questions = append(questions, *q)
	}
	return i.load(ctx, questions, replace)
}

func (i *QuestionImporter) load(ctx context.Context, questions []model.Question, replace bool) (*ImportResult, error) {
	var result *ImportResult
	err := i.store.WithBulkTx(ctx, func(w repository.BulkWriter) error {
		var err error
		result, err = i.write(ctx, w, questions, replace)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, storeErr("import questions", err)
	}

	i.log.Info().
		Str("version", i.version).
		Int64("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int64("replaced", result.Replaced).
		Msg("Questions imported")
	return result, nil
}

func (i *QuestionImporter) write(ctx context.Context, w repository.BulkWriter, questions []model.Question, replace bool) (*ImportResult, error) {
	result := &ImportResult{Version: i.version}

	if replace {
		n, err := w.DeleteByVersion(ctx, i.version)
		if err != nil {
			return nil, storeErr("delete version", err)
		}
		result.Replaced = n
	}

	existing, err := w.ListTextsByVersion(ctx, i.version)
	if err != nil {
		return nil, storeErr("list existing questions", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(questions))
	for _, t := range existing {
		seen[t] = struct{}{}
	}

	fresh := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if _, dup := seen[q.Text]; dup {
			result.Skipped++
			continue
		}
		seen[q.Text] = struct{}{}
		fresh = append(fresh, q)
	}

	if len(fresh) > 0 {
		n, err := w.CreateMany(ctx, fresh)
		if err != nil {
			return nil, storeErr("insert questions", err)
		}
		result.Inserted = n
	}
	return result, nil
}

func (i *QuestionImporter) parse(r io.Reader) ([]model.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV file appears to be empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		if idx == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = idx
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}

	get := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var questions []model.Question
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}

		form := model.QuestionForm{
			Version:  i.version,
			Question: get(record, "question"),
			Opt1:     get(record, "option1"),
			Opt2:     get(record, "option2"),
			Opt3:     get(record, "option3"),
			Opt4:     get(record, "option4"),
			Correct:  get(record, "correct"),
			Topic:    get(record, "topic"),
		}
		q := normalizeForm(form)
		if err := checkStructure(q); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		q.ID = uuid.NewString()
		questions = append(questions, *q)
	}

	if len(questions) == 0 {
		return nil, errors.New("CSV file appears to be empty")
	}
	return questions, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
