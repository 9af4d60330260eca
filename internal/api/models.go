package api

import (
	"time"

	"github.com/aulaops/aula-api/internal/domain"
)

// ActivityResponse represents the response data for an activity
type ActivityResponse struct {
	ID           string     `json:"id"`
	ParameterID  string     `json:"parameter_id"`
	Name         string     `json:"name"`
	Weight       float64    `json:"weight"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	ManualReview bool       `json:"manual_review"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// activityToResponse converts a domain.Activity to an ActivityResponse
func activityToResponse(activity *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:           activity.ID.String(),
		ParameterID:  activity.ParameterID.String(),
		Name:         activity.Name,
		Weight:       activity.Weight,
		DueAt:        activity.DueAt,
		ManualReview: activity.ManualReview,
		Active:       activity.Active,
		CreatedAt:    activity.CreatedAt,
		UpdatedAt:    activity.UpdatedAt,
	}
}

// ActivityProgressResponse represents the response data for a user's
// activity progress row
type ActivityProgressResponse struct {
	UserID        string    `json:"user_id"`
	ActivityID    string    `json:"activity_id"`
	Progress      float64   `json:"progress"`
	IsCompleted   bool      `json:"is_completed"`
	FinalGrade    *float64  `json:"final_grade,omitempty"`
	AttemptCount  int       `json:"attempt_count"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	ManualReview  bool      `json:"manual_review"`
}

// activityProgressToResponse converts a domain.UserActivityProgress to an
// ActivityProgressResponse
func activityProgressToResponse(progress *domain.UserActivityProgress) ActivityProgressResponse {
	return ActivityProgressResponse{
		UserID:        progress.UserID.String(),
		ActivityID:    progress.ActivityID.String(),
		Progress:      progress.Progress,
		IsCompleted:   progress.IsCompleted,
		FinalGrade:    progress.FinalGrade,
		AttemptCount:  progress.AttemptCount,
		LastAttemptAt: progress.LastAttemptAt,
		ManualReview:  progress.ManualReview,
	}
}

// LessonProgressResponse represents the response data for a user's lesson
// progress row
type LessonProgressResponse struct {
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	Progress    float64   `json:"progress"`
	IsCompleted bool      `json:"is_completed"`
	IsLocked    bool      `json:"is_locked"`
	IsNew       bool      `json:"is_new"`
	LastUpdated time.Time `json:"last_updated"`
}

// lessonProgressToResponse converts a domain.UserLessonProgress to a
// LessonProgressResponse
func lessonProgressToResponse(progress *domain.UserLessonProgress) LessonProgressResponse {
	return LessonProgressResponse{
		UserID:      progress.UserID.String(),
		LessonID:    progress.LessonID.String(),
		Progress:    progress.Progress,
		IsCompleted: progress.IsCompleted,
		IsLocked:    progress.IsLocked,
		IsNew:       progress.IsNew,
		LastUpdated: progress.LastUpdated,
	}
}
