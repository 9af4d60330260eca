package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Validation errors for progress rows.
var (
	ErrEmptyProgressUserID = errors.New("progress user ID cannot be empty")
	ErrNegativeAttempts    = errors.New("attempt count cannot be negative")
)

// UserLessonProgress tracks a single user's state for a single lesson.
// Rows are created at enrollment time and mutated by lesson-consumption
// events; they are never deleted while the enrollment exists.
// (userID, lessonID) is the unique key.
type UserLessonProgress struct {
	UserID      uuid.UUID `json:"user_id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	Progress    float64   `json:"progress"` // Percentage [0,100]
	IsCompleted bool      `json:"is_completed"`
	IsLocked    bool      `json:"is_locked"`
	IsNew       bool      `json:"is_new"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewLockedLessonProgress creates the progress row seeded for a lesson the
// student has not yet reached.
func NewLockedLessonProgress(userID, lessonID uuid.UUID) *UserLessonProgress {
	return &UserLessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Progress:    0,
		IsCompleted: false,
		IsLocked:    true,
		IsNew:       false,
		LastUpdated: time.Now().UTC(),
	}
}

// NewUnlockedLessonProgress creates the progress row seeded for the lesson
// the student starts with (the first lesson in order, or a welcome lesson).
func NewUnlockedLessonProgress(userID, lessonID uuid.UUID) *UserLessonProgress {
	return &UserLessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Progress:    0,
		IsCompleted: false,
		IsLocked:    false,
		IsNew:       true,
		LastUpdated: time.Now().UTC(),
	}
}

// Validate checks if the UserLessonProgress has valid data.
func (p *UserLessonProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if p.LessonID == uuid.Nil {
		return ErrEmptyLessonID
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("%w: lesson progress %.2f", ErrInvalidProgress, p.Progress)
	}
	return nil
}

// UserActivityProgress tracks a single user's state for a single activity.
// (userID, activityID) is the unique key. FinalGrade stays nil until the
// activity has been graded. ManualReview is copied from the activity at
// completion time so later edits to the activity do not rewrite history.
type UserActivityProgress struct {
	UserID        uuid.UUID `json:"user_id"`
	ActivityID    uuid.UUID `json:"activity_id"`
	Progress      float64   `json:"progress"` // Percentage [0,100]
	IsCompleted   bool      `json:"is_completed"`
	FinalGrade    *float64  `json:"final_grade,omitempty"`
	AttemptCount  int       `json:"attempt_count"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	ManualReview  bool      `json:"manual_review"`
}

// Validate checks if the UserActivityProgress has valid data.
func (p *UserActivityProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if p.ActivityID == uuid.Nil {
		return ErrEmptyActivityID
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("%w: activity progress %.2f", ErrInvalidProgress, p.Progress)
	}
	if p.FinalGrade != nil && (*p.FinalGrade < 0 || *p.FinalGrade > 100) {
		return fmt.Errorf("%w: final grade %.2f", ErrInvalidGrade, *p.FinalGrade)
	}
	if p.AttemptCount < 0 {
		return ErrNegativeAttempts
	}
	return nil
}
