package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/portfolio-studio/engine/internal/api/handlers"
	mw "github.com/portfolio-studio/engine/internal/api/middleware"
)

type Dependencies struct {
	// HMACSecret protects the mutating routes when non-empty.
	HMACSecret     []byte
	RateLimitRPS   float64
	RateLimitBurst int
	// CORSOrigins lists the browser origins allowed to call the API; empty allows any.
	CORSOrigins []string

	HealthHandler  *handlers.HealthHandler
	ContentHandler *handlers.ContentHandler
	ResumeHandler  *handlers.ResumeHandler
	EnvHandler     *handlers.EnvHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.CORSOrigins))
	r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	r.Use(chimid.Compress(5))

	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api", func(api chi.Router) {
		content := dep.ContentHandler
		api.Route("/data", func(dr chi.Router) {
			dr.Get("/personal-info", content.GetPersonalInfo)
			dr.Get("/skills", content.GetSkills)
			dr.Get("/experience", content.GetExperience)
			dr.Get("/projects", content.GetProjects)
			dr.Get("/contact-config", content.GetContactConfig)
			dr.Get("/resume", content.GetResume)
			dr.Get("/export", content.Export)

			dr.Group(func(protected chi.Router) {
				protected.Use(mw.Auth(dep.HMACSecret))
				protected.Post("/personal-info", content.SavePersonalInfo)
				protected.Post("/skills", content.SaveSkills)
				protected.Post("/experience", content.SaveExperience)
				protected.Post("/projects", content.SaveProjects)
				protected.Post("/contact-config", content.SaveContactConfig)
				protected.Post("/resume", content.SaveResume)
			})
		})

		api.Get("/github-enabled", dep.EnvHandler.GitHubEnabled)

		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))
			protected.Post("/upload-resume", dep.ResumeHandler.Upload)
			protected.Delete("/upload-resume", dep.ResumeHandler.Delete)
			protected.Post("/update-env", dep.EnvHandler.UpdateEnv)
		})
	})

	return r
}
