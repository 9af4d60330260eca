package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aulaops/aula-api/internal/api"
	apiMiddleware "github.com/aulaops/aula-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	enrollmentHandler := api.NewEnrollmentHandler(app.enrollmentService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)
	completionHandler := api.NewCompletionHandler(app.completionService, app.resultStore, app.logger)
	reportHandler := api.NewReportHandler(app.reportService, app.logger)
	activityHandler := api.NewActivityHandler(app.activityService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// All endpoints require a token issued by the identity service.
		// Collaborator systems (enrollment, submissions) call in with
		// service tokens, students with their own.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Enrollment event intake
			r.Post("/enrollments", enrollmentHandler.InitializeEnrollment)

			// Lesson progress
			r.Post("/lessons/{id}/progress", progressHandler.UpdateLessonProgress)

			// Submission ingestion and activity completion
			r.Post("/activities/{id}/results", completionHandler.SubmitResult)
			r.Post("/activities/{id}/complete", completionHandler.CompleteActivity)

			// Grade reports
			r.Get("/subjects/{id}/report", reportHandler.GetSubjectReport)

			// Activity authoring
			r.Post("/parameters/{id}/activities", activityHandler.CreateActivity)
			r.Get("/activities/{id}", activityHandler.GetActivity)
			r.Put("/activities/{id}", activityHandler.UpdateActivity)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
