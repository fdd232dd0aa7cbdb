package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	apiMiddleware "github.com/trekora/trek-api/internal/api/middleware"
	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
)

// maxBodyBytes caps request bodies; the payloads here are small JSON
// documents.
const maxBodyBytes = 10 * 1024

// setupRouter configures the router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	h := app.newHandlers()
	authMW := apiMiddleware.NewAuthMiddleware(app.tokenService, app.userStore)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(apiMiddleware.SecurityHeaders)
	r.Use(apiMiddleware.Trace)

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(app.config.Server.RateLimit, time.Hour))

		r.Route("/v1/users", func(r chi.Router) {
			r.Post("/signup", h.auth.Signup)
			r.Post("/login", h.auth.Login)
			r.Post("/forgotPassword", h.auth.ForgotPassword)
			r.Patch("/resetPassword/{token}", h.auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)

				r.Get("/me", h.users.GetMe)
				r.Patch("/updateMyPassword", h.auth.UpdatePassword)
				r.Patch("/updateMe", h.users.UpdateMe)
				r.Delete("/deleteMe", h.users.DeleteMe)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))

					r.Get("/", h.users.ListUsers)
					r.Post("/", h.users.CreateUser)
					r.Get("/{id}", h.users.GetUser)
					r.Patch("/{id}", h.users.UpdateUser)
					r.Delete("/{id}", h.users.DeleteUser)
				})
			})
		})

		r.Route("/v1/tours", func(r chi.Router) {
			r.Get("/", h.tours.ListTours)
			r.Get("/top-5-cheap", h.tours.TopTours)
			r.Get("/tour-stats", h.tours.TourStats)
			r.Get("/tours-within/{distance}/center/{latlng}/unit/{unit}", h.tours.ToursWithin)
			r.Get("/distances/{latlng}/unit/{unit}", h.tours.TourDistances)
			r.Get("/{id}", h.tours.GetTour)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)

				r.With(apiMiddleware.RequireRole(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide)).
					Get("/monthly-plan/{year}", h.tours.MonthlyPlan)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireRole(domain.RoleAdmin, domain.RoleLeadGuide))

					r.Post("/", h.tours.CreateTour)
					r.Patch("/{id}", h.tours.UpdateTour)
					r.Delete("/{id}", h.tours.DeleteTour)
				})
			})

			// Reviews nested under a tour.
			r.Route("/{tourId}/reviews", func(r chi.Router) {
				r.Use(authMW.Authenticate)

				r.Get("/", h.reviews.ListReviews)
				r.With(apiMiddleware.RequireRole(domain.RoleUser)).
					Post("/", h.reviews.CreateReview)
			})
		})

		r.Route("/v1/reviews", func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Get("/", h.reviews.ListReviews)
			r.With(apiMiddleware.RequireRole(domain.RoleUser)).
				Post("/", h.reviews.CreateReview)
			r.Get("/{id}", h.reviews.GetReview)
			r.Patch("/{id}", h.reviews.UpdateReview)
			r.Delete("/{id}", h.reviews.DeleteReview)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithData(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound,
			"Can't find "+r.URL.Path+" on this server!")
	})

	return r
}
