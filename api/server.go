/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request lines
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend
  5. RequireAuth on everything under /api except /api/login

ROUTE GROUPS:
  /api/login          Credential exchange (public)
  /api/employees/*    Employee management
  /api/departments/*  Department management
  /api/attendance/*   Attendance logging and summary
  /api/leaves/*       Leave request lifecycle
  /api/compliance/*   License/certification tracking
  /api/users/*        Account administration

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go:     The token middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		// Everything else requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Put("/{id}", h.UpdateEmployee)
				r.Delete("/{id}", h.DeleteEmployee)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.ListDepartments)
				r.Post("/", h.CreateDepartment)
				r.Get("/{id}", h.GetDepartment)
				r.Put("/{id}", h.UpdateDepartment)
				r.Delete("/{id}", h.DeleteDepartment)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.ListAttendance)
				r.Post("/", h.LogAttendance)
				r.Get("/summary", h.AttendanceSummary)
				r.Get("/{id}", h.GetAttendance)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.ListLeaves)
				r.Post("/", h.CreateLeave)
				r.Get("/pending", h.PendingLeaves)
				r.Get("/{id}", h.GetLeave)
				r.Put("/{id}/status", h.UpdateLeaveStatus)
				r.Put("/{id}/dates", h.UpdateLeaveDates)
				r.Delete("/{id}", h.DeleteLeave)
			})

			r.Route("/compliance", func(r chi.Router) {
				r.Get("/", h.ListCompliance)
				r.Post("/", h.CreateCompliance)
				r.Get("/{id}", h.GetCompliance)
				r.Put("/{id}", h.UpdateCompliance)
				r.Delete("/{id}", h.DeleteCompliance)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})
		})
	})

	return r
}
