package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors for activity results.
var (
	ErrEmptyResult = errors.New("activity result cannot be empty")
)

// AnswerResult is the outcome of a single question inside a submission.
type AnswerResult struct {
	Answer    string  `json:"answer"`
	IsCorrect bool    `json:"is_correct"`
	Weight    float64 `json:"weight"`
}

// ActivityResult is the raw submission record written by the external
// quiz/submission collaborator, keyed by (activityID, userID). It is the
// source of truth only until the completion handler persists it; after
// that the progress row wins.
type ActivityResult struct {
	Score        float64                 `json:"score"`
	Answers      map[string]AnswerResult `json:"answers,omitempty"`
	Passed       bool                    `json:"passed"`
	FinalGrade   float64                 `json:"final_grade"`
	AttemptCount *int                    `json:"attempt_count,omitempty"`
	SubmittedAt  time.Time               `json:"submitted_at"`
}

// Validate checks if the ActivityResult has valid data.
func (r *ActivityResult) Validate() error {
	if r.FinalGrade < 0 || r.FinalGrade > 100 {
		return fmt.Errorf("%w: final grade %.2f", ErrInvalidGrade, r.FinalGrade)
	}
	if r.AttemptCount != nil && *r.AttemptCount < 0 {
		return ErrNegativeAttempts
	}
	if r.SubmittedAt.IsZero() {
		return fmt.Errorf("%w: submitted_at is required", ErrValidation)
	}
	return nil
}
