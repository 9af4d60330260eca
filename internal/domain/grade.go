package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ParameterGrade is the derived grade of one user for one evaluation
// parameter. Rows are recomputed and replaced by the grading service,
// never hand-edited. (parameterID, userID) is the unique key.
type ParameterGrade struct {
	ParameterID uuid.UUID `json:"parameter_id"`
	UserID      uuid.UUID `json:"user_id"`
	Grade       float64   `json:"grade"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubjectGrade is the derived grade of one user for one subject, computed
// from the course the subject is linked to. (subjectID, userID) is the
// unique key.
type SubjectGrade struct {
	SubjectID uuid.UUID `json:"subject_id"`
	UserID    uuid.UUID `json:"user_id"`
	Grade     float64   `json:"grade"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GradeReport is the reporting view returned to the admin UI: the subject
// grade with its parameter and activity breakdown.
type GradeReport struct {
	SubjectID   uuid.UUID            `json:"subject_id"`
	SubjectName string               `json:"subject_name"`
	Grade       float64              `json:"grade"`
	Parameters  []ParameterReportRow `json:"parameters"`
	Activities  []ActivityReportRow  `json:"activities"`
}

// ParameterReportRow is one parameter's grade and weight within a report.
type ParameterReportRow struct {
	ParameterID uuid.UUID `json:"parameter_id"`
	Name        string    `json:"name"`
	Grade       *float64  `json:"grade,omitempty"`
	Weight      float64   `json:"weight"`
}

// ActivityReportRow is one activity's grade and weight within a report.
type ActivityReportRow struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Name       string    `json:"name"`
	Grade      *float64  `json:"grade,omitempty"`
	Weight     float64   `json:"weight"`
}

// RoundGrade rounds a grade to 2 decimal places using round-half-up
// semantics. All persisted grades go through this before being written.
func RoundGrade(grade float64) float64 {
	return math.Floor(grade*100+0.5) / 100
}
