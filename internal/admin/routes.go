package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"admob-switch/internal/middleware"
)

// Routes builds the /admin sub-router. Login is public; everything else sits
// behind the JWT middleware. CORS is open for the dashboard frontend.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(h.jwtSecret))

		r.Get("/dashboard", h.Dashboard)

		r.Route("/apps", func(r chi.Router) {
			r.Get("/", h.ListApps)
			r.Post("/", h.CreateApp)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetApp)
				r.Put("/", h.UpdateApp)
				r.Delete("/", h.DeleteApp)

				r.Get("/analytics", h.Analytics)

				r.Route("/accounts", func(r chi.Router) {
					r.Get("/", h.ListAccounts)
					r.Post("/", h.CreateAccount)
					r.Put("/{accountID}", h.UpdateAccount)
					r.Delete("/{accountID}", h.DeleteAccount)
				})

				r.Route("/rule", func(r chi.Router) {
					r.Get("/", h.GetRule)
					r.Put("/", h.PutRule)
					r.Delete("/", h.DeleteRule)
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", h.ListNotifications)
					r.Post("/", h.CreateNotification)
					r.Put("/{notificationID}", h.UpdateNotification)
					r.Delete("/{notificationID}", h.DeleteNotification)
					r.Post("/{notificationID}/send", h.SendNotification)
				})
			})
		})
	})

	return r
}
