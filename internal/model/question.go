package model

// Question is a single multiple-choice item in the question bank.
type Question struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
	Topic   string   `json:"topic"`
}

// ExamQuestion is a Question as served to an exam taker: the correct answer is never included.
type ExamQuestion struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Topic   string   `json:"topic,omitempty"`
}

// ForExam strips the correct answer.
func (q *Question) ForExam() ExamQuestion {
	return ExamQuestion{
		ID:      q.ID,
		Version: q.Version,
		Text:    q.Text,
		Options: q.Options,
		Topic:   q.Topic,
	}
}

// QuestionForm is the raw admin payload for creating or editing a question.
// Fields are validated and normalized by the question validator, not by binding tags,
// so that every rejection carries its domain-specific reason.
type QuestionForm struct {
	Version  string `json:"version" form:"version"`
	Question string `json:"question" form:"question"`
	Opt1     string `json:"opt1" form:"opt1"`
	Opt2     string `json:"opt2" form:"opt2"`
	Opt3     string `json:"opt3" form:"opt3"`
	Opt4     string `json:"opt4" form:"opt4"`
	Correct  string `json:"correct" form:"correct"`
	Topic    string `json:"topic" form:"topic"`
}

// RawOptions returns the four option slots in order.
func (f *QuestionForm) RawOptions() []string {
	return []string{f.Opt1, f.Opt2, f.Opt3, f.Opt4}
}
