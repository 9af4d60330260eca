package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/store"
)

// ReportService builds the grade reports consumed by the external admin
// and reporting UI. Reports are read-only views over the derived grade
// rows and the user's progress; building one never triggers a recompute.
type ReportService interface {
	// GetSubjectReport returns the user's grade for a subject together
	// with the parameter and activity breakdown of the linked course.
	// Parameters and activities without a computed grade appear with a
	// nil grade, not zero.
	//
	// Returns ErrSubjectNotFound if the subject does not exist.
	GetSubjectReport(ctx context.Context, subjectID, userID uuid.UUID) (*domain.GradeReport, error)
}

// reportServiceImpl implements the ReportService interface
type reportServiceImpl struct {
	courseStore   store.CourseStore
	activityStore store.ActivityStore
	progressStore store.ProgressStore
	gradeRepo     store.GradeRepository
	logger        *slog.Logger
}

// NewReportService creates a new ReportService.
// It returns an error if any of the required dependencies are nil.
func NewReportService(
	courseStore store.CourseStore,
	activityStore store.ActivityStore,
	progressStore store.ProgressStore,
	gradeRepo store.GradeRepository,
	logger *slog.Logger,
) (ReportService, error) {
	if courseStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "courseStore cannot be nil",
		}
	}
	if activityStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "activityStore cannot be nil",
		}
	}
	if progressStore == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "progressStore cannot be nil",
		}
	}
	if gradeRepo == nil {
		return nil, &ServiceError{
			Operation: "create_service",
			Message:   "gradeRepo cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reportServiceImpl{
		courseStore:   courseStore,
		activityStore: activityStore,
		progressStore: progressStore,
		gradeRepo:     gradeRepo,
		logger:        logger.With("component", "report_service"),
	}, nil
}

// GetSubjectReport assembles the report from the subject's linked course:
// the persisted subject grade, one row per parameter with its grade and
// weight, and one row per active activity with the user's final grade.
func (s *reportServiceImpl) GetSubjectReport(
	ctx context.Context,
	subjectID, userID uuid.UUID,
) (*domain.GradeReport, error) {
	subject, err := s.courseStore.GetSubject(ctx, subjectID)
	if err != nil {
		s.logger.Error("failed to load subject for report",
			"error", err,
			"subject_id", subjectID,
			"user_id", userID)
		return nil, NewServiceError("get_subject_report", "failed to load subject", err)
	}

	report := &domain.GradeReport{
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Parameters:  []domain.ParameterReportRow{},
		Activities:  []domain.ActivityReportRow{},
	}

	subjectGrade, err := s.gradeRepo.GetSubjectGrade(ctx, subjectID, userID)
	if err == nil {
		report.Grade = subjectGrade.Grade
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, NewServiceError("get_subject_report", "failed to load subject grade", err)
	}

	parameters, err := s.activityStore.ListParametersByCourse(ctx, subject.CourseID)
	if err != nil {
		return nil, NewServiceError("get_subject_report", "failed to list parameters", err)
	}

	parameterGrades, err := s.gradeRepo.ListParameterGrades(ctx, subject.CourseID, userID)
	if err != nil {
		return nil, NewServiceError("get_subject_report", "failed to list parameter grades", err)
	}

	activityProgress, err := s.progressStore.ListActivityProgressByCourse(ctx, userID, subject.CourseID)
	if err != nil {
		return nil, NewServiceError("get_subject_report", "failed to list activity progress", err)
	}

	for _, parameter := range parameters {
		row := domain.ParameterReportRow{
			ParameterID: parameter.ID,
			Name:        parameter.Name,
			Weight:      parameter.Weight,
		}
		if grade, ok := parameterGrades[parameter.ID]; ok {
			g := grade.Grade
			row.Grade = &g
		}
		report.Parameters = append(report.Parameters, row)

		activities, err := s.activityStore.ListActivitiesByParameter(ctx, parameter.ID)
		if err != nil {
			return nil, NewServiceError("get_subject_report", "failed to list activities", err)
		}

		for _, activity := range activities {
			activityRow := domain.ActivityReportRow{
				ActivityID: activity.ID,
				Name:       activity.Name,
				Weight:     activity.Weight,
			}
			if progress, ok := activityProgress[activity.ID]; ok && progress.FinalGrade != nil {
				g := *progress.FinalGrade
				activityRow.Grade = &g
			}
			report.Activities = append(report.Activities, activityRow)
		}
	}

	s.logger.Debug("subject report assembled",
		"subject_id", subjectID,
		"user_id", userID,
		"parameter_count", len(report.Parameters),
		"activity_count", len(report.Activities))

	return report, nil
}
