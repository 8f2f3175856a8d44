package model

import "time"

// AnswerLogEntry is one persisted answer event.
type AnswerLogEntry struct {
	SessionToken string       `json:"session_token"`
	QuestionID   string       `json:"question_id"`
	Answer       string       `json:"answer"`
	Result       AnswerResult `json:"result"`
	AnsweredAt   time.Time    `json:"answered_at"`
}
