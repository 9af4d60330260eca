package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyLessonID is returned when a lesson ID is missing.
var ErrEmptyLessonID = errors.New("lesson ID cannot be empty")

// Lesson is a piece of sequential course content. The title is the source
// of the lesson's natural order within the course (see lessonorder).
type Lesson struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	// Duration is the lesson length in minutes.
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLessonID
	}
	if l.CourseID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if l.Title == "" {
		return fmt.Errorf("%w: lesson title", ErrEmptyTitle)
	}
	return nil
}
