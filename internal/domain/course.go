package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Validation errors for courses, parameters and activities.
var (
	ErrEmptyCourseID    = errors.New("course ID cannot be empty")
	ErrEmptyParameterID = errors.New("parameter ID cannot be empty")
	ErrEmptyActivityID  = errors.New("activity ID cannot be empty")
	ErrEmptySubjectID   = errors.New("subject ID cannot be empty")
)

// Course is a unit of teaching content. Its grade is the weighted sum of
// its evaluation parameters' grades.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if c.Title == "" {
		return fmt.Errorf("%w: course title", ErrEmptyTitle)
	}
	return nil
}

// Subject ("materia") is an academic subject linked to a course. Its grade
// is derived from the linked course's aggregate grade.
type Subject struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Subject has valid data.
func (s *Subject) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubjectID
	}
	if s.CourseID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if s.Name == "" {
		return fmt.Errorf("%w: subject name", ErrEmptyTitle)
	}
	return nil
}

// Parameter ("parametro") is a weighted evaluation category within a course,
// e.g. "Quizzes" worth 40% of the course grade.
type Parameter struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"` // Percentage of the course grade, 0-100
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Parameter has valid data.
func (p *Parameter) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyParameterID
	}
	if p.CourseID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if p.Name == "" {
		return fmt.Errorf("%w: parameter name", ErrEmptyTitle)
	}
	if p.Weight < 0 || p.Weight > 100 {
		return fmt.Errorf("%w: parameter weight %.2f", ErrInvalidWeight, p.Weight)
	}
	return nil
}

// Activity is a gradable unit of work belonging to a parameter, itself
// weighted within that parameter. The sum of active activities' weights
// per parameter must never exceed 100; that invariant is enforced by the
// authoring path, not here.
type Activity struct {
	ID          uuid.UUID  `json:"id"`
	ParameterID uuid.UUID  `json:"parameter_id"`
	Name        string     `json:"name"`
	Weight      float64    `json:"weight"` // Percentage within the parameter, 0-100
	DueAt       *time.Time `json:"due_at,omitempty"`
	// ManualReview ("revisada") marks activities whose grade a teacher is
	// expected to confirm. The engine still persists the submitted final
	// grade as authoritative; see the grading service docs.
	ManualReview bool      `json:"manual_review"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewActivity creates an active Activity for a parameter with the given
// name and weight.
func NewActivity(parameterID uuid.UUID, name string, weight float64) (*Activity, error) {
	now := time.Now().UTC()
	activity := &Activity{
		ID:          uuid.New(),
		ParameterID: parameterID,
		Name:        name,
		Weight:      weight,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}

	return activity, nil
}

// Validate checks if the Activity has valid data.
func (a *Activity) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyActivityID
	}
	if a.ParameterID == uuid.Nil {
		return ErrEmptyParameterID
	}
	if a.Name == "" {
		return fmt.Errorf("%w: activity name", ErrEmptyTitle)
	}
	if a.Weight < 0 || a.Weight > 100 {
		return fmt.Errorf("%w: activity weight %.2f", ErrInvalidWeight, a.Weight)
	}
	return nil
}
