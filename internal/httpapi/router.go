package httpapi

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edushelf/campusd/internal/account"
	"github.com/edushelf/campusd/internal/auth"
	"github.com/edushelf/campusd/internal/quiz"
	"github.com/edushelf/campusd/internal/rbac"
	"github.com/edushelf/campusd/internal/storage"
)

type Handler struct {
	db       *sql.DB
	accounts *account.Service
	quizzes  quiz.Store
	tokens   *auth.Service
	blobs    storage.BlobStore
	logger   zerolog.Logger
}

func NewHandler(
	db *sql.DB,
	accounts *account.Service,
	quizzes quiz.Store,
	tokens *auth.Service,
	blobs storage.BlobStore,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		db:       db,
		accounts: accounts,
		quizzes:  quizzes,
		tokens:   tokens,
		blobs:    blobs,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/healthz", h.HealthCheck)

	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)

	router.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(h.tokens))

		pr.Route("/api/v1", func(api chi.Router) {
			api.Get("/dashboard", h.Dashboard)

			api.Route("/courses", func(r chi.Router) {
				r.With(rbac.Require("course:create")).Post("/", h.CreateCourse)
				r.With(rbac.Require("course:view")).Get("/", h.ListCourses)
				r.With(rbac.Require("course:view")).Get("/{courseID}", h.CourseDetail)
				r.With(rbac.Require("content:create")).Post("/{courseID}/content", h.AddContent)
				r.With(rbac.Require("quiz:create")).Post("/{courseID}/quizzes", h.CreateQuiz)
				r.With(rbac.Require("assignment:create")).Post("/{courseID}/assignments", h.CreateAssignment)
			})

			api.With(rbac.Require("content:view")).Get("/content/{contentID}/file", h.DownloadContent)

			api.With(rbac.Require("enrollment:create")).Post("/enrollments", h.EnrollStudent)
			api.With(rbac.Require("students:list")).Get("/students", h.ListStudents)

			api.Route("/schedules", func(r chi.Router) {
				r.With(rbac.Require("schedule:view")).Get("/", h.ListSchedules)
				r.With(rbac.Require("schedule:write")).Post("/", h.AddSchedule)
				r.With(rbac.Require("schedule:write")).Put("/{scheduleID}", h.UpdateSchedule)
				r.With(rbac.Require("schedule:write")).Delete("/{scheduleID}", h.DeleteSchedule)
			})

			api.With(rbac.Require("attempt:create")).Post("/quizzes/{quizID}/attempts", h.StartAttempt)
			api.With(rbac.Require("attempt:submit")).Post("/attempts/{attemptID}/submit", h.SubmitAttempt)

			api.With(rbac.Require("assignment:submit")).Post("/assignments/{assignmentID}/submissions", h.SubmitAssignment)
		})
	})
}
