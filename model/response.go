package model

import "time"

// Response is one respondent's submission. It is immutable once stored.
type Response struct {
	ID          string    `json:"id"`
	SurveyID    string    `json:"surveyId"`
	Answers     Answers   `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
	UserAgent   string    `json:"userAgent,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
}

// Answer returns the answer to a field, NoAnswer when missing.
func (r Response) Answer(fieldID string) Answer {
	return r.Answers[fieldID]
}
