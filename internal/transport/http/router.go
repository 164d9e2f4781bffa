package http

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/access"
	"github.com/crm-mobile-api/internal/application/assignment"
	"github.com/crm-mobile-api/internal/application/document"
	"github.com/crm-mobile-api/internal/application/notification"
	"github.com/crm-mobile-api/internal/application/oauth"
	"github.com/crm-mobile-api/internal/application/profile"
	"github.com/crm-mobile-api/internal/application/task"
	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/transport/http/handler"
	appmiddleware "github.com/crm-mobile-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Forwarded-Host"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(appmiddleware.Metrics(deps.Metrics))
	}

	// Without a JWT provider nothing can authenticate; protected routes answer 401.
	authMw := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication unavailable"}` + "\n"))
		})
	}
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	}

	// 5 requests/second, burst of 10 for the guest OAuth config endpoint.
	guestRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	images := profile.NewResolver(deps.ImageStore, cfg.AvatarURLTTL)
	policy := access.NewPolicy(access.PolicyDeps{
		UserRepo: deps.UserRepo,
		TeamRepo: deps.TeamRepo,
		TodoRepo: deps.TodoRepo,
		Metrics:  deps.Metrics,
	})
	taskSvc := task.NewService(task.ServiceDeps{
		TaskRepo: deps.TaskRepo,
		TodoRepo: deps.TodoRepo,
		UserRepo: deps.UserRepo,
		Images:   images,
		Schema:   deps.Schema,
		Now:      deps.Now,
	})
	notifSvc := notification.NewService(notification.ServiceDeps{
		LogRepo:    deps.NotificationLogs,
		LegacyRepo: deps.LegacyNotifs,
		UserRepo:   deps.UserRepo,
		Publisher:  deps.Publisher,
		Now:        deps.Now,
	})
	assignSvc := assignment.NewService(assignment.ServiceDeps{
		Policy:       policy,
		DocumentRepo: deps.DocumentRepo,
		TodoRepo:     deps.TodoRepo,
		UserRepo:     deps.UserRepo,
		Notifier:     notifSvc,
		Mailer:       deps.Mailer,
		Images:       images,
		Metrics:      deps.Metrics,
		Now:          deps.Now,
	})
	docSvc := document.NewService(policy, deps.DocumentRepo)
	oauthSvc := oauth.NewService(oauth.ServiceDeps{
		OAuthRepo: deps.OAuthRepo,
		Site:      cfg.Site,
		Metrics:   deps.Metrics,
		Now:       deps.Now,
	})

	healthH := handler.NewHealthHandler(deps.DB)
	taskH := handler.NewTaskHandler(taskSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	assignH := handler.NewAssignmentHandler(assignSvc)
	leadH := handler.NewDocumentHandler(docSvc, domain.DoctypeLead)
	dealH := handler.NewDocumentHandler(docSvc, domain.DoctypeDeal)
	oauthH := handler.NewOAuthHandler(oauthSvc)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(guestRL.Limit).Get("/oauth/config", oauthH.Config)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskH.Filter)
				r.Post("/", taskH.Create)
				r.Get("/home", taskH.Home)
				r.Get("/buckets", taskH.Buckets)
				r.Put("/{id}", taskH.Edit)
				r.Delete("/{id}", taskH.Delete)
				r.Put("/{id}/status", taskH.UpdateStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifH.ListPortal)
				r.Get("/unseen-count", notifH.UnseenCount)
				r.Get("/unread-count", notifH.UnseenCount)
				r.Put("/{name}/seen", notifH.MarkPortalSeen)
				r.Get("/logs", notifH.ListLogs)
				r.Put("/logs/{name}/seen", notifH.MarkSeen)
				r.Get("/legacy", notifH.ListLegacy)
				r.Post("/legacy/read", notifH.MarkAsRead)
			})

			r.Get("/assignments/users", assignH.AssignableUsers)
			r.Post("/assignments", assignH.AssignLead)
			r.Post("/todos", assignH.AddToDo)

			r.Get("/leads", leadH.List)
			r.Get("/leads/{name}", leadH.Get)
			r.Get("/deals", dealH.List)
			r.Get("/deals/{name}", dealH.Get)

			// System Manager only
			r.With(appmiddleware.RequireRole(domain.RoleSystemManager)).Post("/oauth/bootstrap", oauthH.Bootstrap)
		})
	})

	return r
}
