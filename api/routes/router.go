package routes

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmadriz/portfolio-backend/api/controllers"
	"github.com/rmadriz/portfolio-backend/api/middleware"
	"github.com/rmadriz/portfolio-backend/internal/auth"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/internal/contact"
	"github.com/rmadriz/portfolio-backend/internal/hero"
	"github.com/rmadriz/portfolio-backend/internal/media"
	"github.com/rmadriz/portfolio-backend/internal/projects"
	"github.com/rmadriz/portfolio-backend/internal/skills"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/rmadriz/portfolio-backend/pkg/metrics"
	"github.com/rmadriz/portfolio-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        redis.Pinger
	HTTPMetrics  *metrics.HTTPMetrics
	MetricsHTTP  http.Handler
	Cache        *cache.Cache
	AuthService  auth.Service
	Projects     projects.Service
	Skills       skills.Service
	Contact      contact.Service
	Media        media.Service
	Hero         hero.Service
	UploadsDir   string
	ServeUploads bool
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHTTP)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	if deps.ServeUploads {
		fileServer(r, "/uploads", http.Dir(filepath.Clean(deps.UploadsDir)))
	}

	r.Route(cfg.App.BasePath, func(r chi.Router) {
		// Public surface, served cache-first.
		r.Get("/projects", controllers.ProjectList(deps.Projects, logg))
		r.Get("/projects/categories", controllers.ProjectCategories(deps.Projects, logg))
		r.Get("/projects/types", controllers.ProjectTypes(deps.Projects, logg))
		r.Get("/projects/{projectId}", controllers.ProjectGet(deps.Projects, logg))
		r.Get("/skills", controllers.SkillList(deps.Skills, logg))
		r.Get("/skills/{skillId}", controllers.SkillGet(deps.Skills, logg))
		r.Get("/hero", controllers.HeroGet(deps.Hero, logg))
		r.Get("/contact/info", controllers.ContactInfoGet(deps.Contact, logg))
		r.Post("/contact", controllers.ContactSubmit(deps.Contact, logg))
		r.Get("/media/{mediaId}", controllers.MediaGet(deps.Media, logg))
		r.Get("/media/{mediaId}/download", controllers.MediaDownload(deps.Media, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(deps.AuthService, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(cfg.JWT, logg))
			r.Get("/verify", controllers.AuthVerify(deps.AuthService, cfg.JWT, logg))
		})

		// Admin surface. Every mutating route lives here.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))

			r.Get("/me", controllers.AuthMe(logg))

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", controllers.ProjectCreate(deps.Projects, logg))
				r.Put("/{projectId}", controllers.ProjectUpdate(deps.Projects, logg))
				r.Patch("/{projectId}", controllers.ProjectPatch(deps.Projects, logg))
				r.Delete("/{projectId}", controllers.ProjectDelete(deps.Projects, logg))
			})

			r.Route("/skills", func(r chi.Router) {
				r.Post("/", controllers.SkillCreate(deps.Skills, logg))
				r.Put("/{skillId}", controllers.SkillUpdate(deps.Skills, logg))
				r.Delete("/{skillId}", controllers.SkillDelete(deps.Skills, logg))
			})

			r.Route("/contact", func(r chi.Router) {
				r.Get("/submissions", controllers.ContactSubmissionList(deps.Contact, logg))
				r.Get("/submissions/unread-count", controllers.ContactUnreadCount(deps.Contact, logg))
				r.Post("/submissions/{submissionId}/read", controllers.ContactMarkRead(deps.Contact, logg))
				r.Delete("/submissions/{submissionId}", controllers.ContactSubmissionDelete(deps.Contact, logg))
				r.Put("/info", controllers.ContactInfoUpdate(deps.Contact, logg))
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", controllers.MediaList(deps.Media, logg))
				r.Post("/", controllers.MediaUpload(deps.Media, cfg.Uploads, logg))
				r.Post("/presign", controllers.MediaPresign(deps.Media, logg))
				r.Delete("/{mediaId}", controllers.MediaDelete(deps.Media, logg))
			})

			r.Put("/hero", controllers.HeroUpdate(deps.Hero, logg))

			r.Route("/cache", func(r chi.Router) {
				r.Get("/stats", controllers.CacheStats(deps.Cache, logg))
				r.Post("/flush", controllers.CacheFlush(deps.Cache, logg))
			})
		})
	})

	return r
}

// fileServer mounts a static directory under the given prefix.
func fileServer(r chi.Router, prefix string, root http.FileSystem) {
	fs := http.StripPrefix(prefix, http.FileServer(root))
	r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}
