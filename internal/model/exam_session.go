package model

import (
	"time"
)

// AnswerResult classifies a submitted answer.
type AnswerResult string

const (
	AnswerCorrect AnswerResult = "correct"
	AnswerWrong   AnswerResult = "wrong"
)

// ExamSession is the server-held state of one exam attempt.
type ExamSession struct {
	Token          string    `json:"-"`
	StartedAt      time.Time `json:"started_at"`
	TotalQuestions int       `json:"total_questions"`
	AnsweredCount  int       `json:"answered_count"`
}

// Progress reports how many drawn questions have been answered.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// ExamStatus is the response for a status query. StartedAt and Progress are only set when Active.
type ExamStatus struct {
	Active    bool       `json:"active"`
	StartedAt *time.Time `json:"started,omitempty"`
	Progress  *Progress  `json:"progress,omitempty"`
}

// AnswerOutcome is the result of recording one answer.
type AnswerOutcome struct {
	Result   AnswerResult `json:"result"`
	Progress Progress     `json:"progress"`
}

// StartExamRequest is the payload for starting an exam.
// An empty Versions list means every version is eligible. NumQuestions defaults when zero.
type StartExamRequest struct {
	Versions     []string `json:"versions" binding:"omitempty,dive,required,max=32"`
	NumQuestions int      `json:"num_questions" binding:"omitempty,min=1,max=1000"`
}

// SubmitAnswerRequest is the payload for answering a single question.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=64"`
	Answer     string `json:"user_answer" binding:"max=2000"`
}

// StartedExam is returned from a successful start.
type StartedExam struct {
	SessionToken string         `json:"session_token"`
	StartedAt    time.Time      `json:"started_at"`
	Total        int            `json:"total"`
	Questions    []ExamQuestion `json:"questions"`
}
