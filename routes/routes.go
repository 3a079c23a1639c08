package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/routes/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RealIP,
		middlewares.RequestLog,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   app.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	root.Get("/.well-known/health", Health(app))
	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/api/v1", apiRouter(app))

	if app.StaticDir != "" {
		root.Mount("/", servePublicFiles(app.StaticDir))
	}

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	authenticate := middlewares.Authenticate(app.Tokens)

	api.Route("/auth", func(r chi.Router) {
		r.Post("/login", Login(app))
		r.Post("/refresh", Refresh(app))
		r.Post("/logout", Logout(app))

		r.With(authenticate).Post("/change-password", ChangePassword(app))
		r.With(authenticate).Get("/me", Me(app))
	})

	api.Get("/public/surveys/{id}", PublicGetSurvey(app))

	api.Route("/surveys", func(r chi.Router) {
		r.Post("/{id}/submit", SubmitSurvey(app))

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middlewares.RequireRole(model.RoleAdmin, model.RoleSuperAdmin))

			// CRUD survey
			r.Post("/", CreateSurvey(app))
			r.Get("/", ListSurveys(app))
			r.Get("/{id}", GetSurveyById(app))
			r.Patch("/{id}", UpdateSurvey(app))
			r.Delete("/{id}", DeleteSurvey(app))
			r.Post("/{id}/activate", ToggleSurveyActive(app))

			r.Get("/{id}/responses", GetSurveyResponses(app))
			r.Get("/{id}/stats", GetSurveyStats(app))
		})
	})

	api.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticate, middlewares.RequireRole(model.RoleSuperAdmin))

		r.Post("/", CreateUser(app))
		r.Get("/", ListUsers(app))
		r.Get("/{id}", GetUser(app))
		r.Patch("/{id}", UpdateUser(app))
		r.Delete("/{id}", DeleteUser(app))
	})

	return api
}

// Health answers 503 while the database is unreachable.
func Health(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.PingContext(r.Context())
		if err != nil {
			log.Errorf("health.db_ping: %s", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, httpx.ErrorBody{Error: "Database unavailable"})
			return
		}
		render.JSON(w, r, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	}
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
