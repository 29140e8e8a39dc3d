package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hostelgrievance/grievance-backend/api/controllers"
	"github.com/hostelgrievance/grievance-backend/api/middleware"
	"github.com/hostelgrievance/grievance-backend/internal/auth"
	"github.com/hostelgrievance/grievance-backend/internal/catalog"
	"github.com/hostelgrievance/grievance-backend/internal/complaints"
	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/notifications"
	"github.com/hostelgrievance/grievance-backend/internal/staff"
	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/auth/session"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
	"github.com/hostelgrievance/grievance-backend/pkg/metrics"
)

// Store is the Redis surface shared by rate limiting and idempotency.
type Store interface {
	middleware.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries everything the HTTP surface needs. Nil services answer with
// a 500 envelope instead of panicking.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    Store
	Sessions session.AccessSessionChecker
	Ready    map[string]controllers.Pinger

	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Auth          auth.Service
	Users         users.Service
	Complaints    complaints.Service
	Notifications notifications.Service
	Catalog       catalog.Service
	Locations     locations.Service
	Staff         staff.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	signinPolicy := middleware.NewAuthRateLimitPolicy(
		"signin",
		cfg.AuthRateLimit.SigninWindow,
		cfg.AuthRateLimit.SigninIPLimit,
		cfg.AuthRateLimit.SigninEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	cookies := controllers.SessionCookies{Cookie: cfg.Cookie, TTL: cfg.JWT.AccessTokenTTL()}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/user/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, d.Store, logg)).Post("/signup", controllers.AuthSignup(d.Auth, cookies, logg))
		r.With(middleware.AuthRateLimit(signinPolicy, d.Store, logg)).Post("/signin", controllers.AuthSignin(d.Auth, cookies, logg))
		r.Post("/signout", controllers.AuthSignout(d.Auth, cookies, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, cookies, logg))
	})

	// Authenticated routes are registered with full paths inside inline
	// groups so Idempotency and Metrics see the final route pattern.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.Cookie.Name, d.Sessions, logg))
		r.Use(middleware.Idempotency(d.Store, cfg.Idempotency.TTL, logg))

		r.Get("/user/me", controllers.Me(d.Auth, logg))
		r.Get("/catalog/tags", controllers.ListCatalog(d.Catalog, catalog.KindTags, logg))
		r.Get("/catalog/locations", controllers.ListLocations(d.Locations, logg))

		r.With(middleware.RequireRoles(logg, enums.RoleStudent, enums.RoleFaculty)).
			Post("/complaint/create", controllers.CreateComplaint(d.Complaints, logg))
		r.Get("/complaint/all", controllers.ListComplaints(d.Complaints, logg))
		r.With(middleware.RequireRoles(logg, enums.RoleIssueIncharge, enums.RoleResolver)).
			Get("/complaint/assigned", controllers.ListAssignedComplaints(d.Complaints, logg))
		r.Get("/complaint/user/{userId}", controllers.ListUserComplaints(d.Complaints, logg))
		r.Post("/complaint/upvote/{complaintId}", controllers.ToggleUpvote(d.Complaints, logg))
		r.Get("/complaint/{complaintId}", controllers.GetComplaint(d.Complaints, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.RoleIssueIncharge))
			r.Post("/complaint/{complaintId}/delegate", controllers.DelegateComplaint(d.Complaints, logg))
			r.Post("/complaint/{complaintId}/escalate", controllers.EscalateComplaint(d.Complaints, logg))
		})
		r.With(middleware.RequireRoles(logg, enums.RoleIssueIncharge, enums.RoleResolver)).
			Post("/complaint/{complaintId}/resolve", controllers.ResolveComplaint(d.Complaints, logg))

		r.Get("/notifications", controllers.ListNotifications(d.Notifications, logg))
		r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		r.Post("/notifications/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))

			r.Post("/admin/assign/incharge", controllers.AssignIncharge(d.Staff, logg))
			r.Get("/admin/get/incharges", controllers.ListIncharges(d.Staff, logg))
			r.Get("/admin/incharge/{id}", controllers.GetIncharge(d.Staff, logg))
			r.Put("/admin/incharge/{id}", controllers.UpdateIncharge(d.Staff, logg))
			r.Delete("/admin/incharge/{id}", controllers.DeleteIncharge(d.Staff, logg))

			r.Post("/admin/assign/resolver", controllers.AssignResolver(d.Staff, logg))
			r.Get("/admin/get/resolvers", controllers.ListResolvers(d.Staff, logg))
			r.Get("/admin/resolver/{id}", controllers.GetResolver(d.Staff, logg))
			r.Put("/admin/resolver/{id}", controllers.UpdateResolver(d.Staff, logg))
			r.Delete("/admin/resolver/{id}", controllers.DeleteResolver(d.Staff, logg))

			// Locations carry a triple instead of a name list; the static
			// routes win over {kind}.
			r.Post("/admin/create/locations", controllers.CreateLocation(d.Locations, logg))
			r.Delete("/admin/delete/locations/{id}", controllers.DeleteLocation(d.Locations, logg))
			r.Get("/admin/get/locations", controllers.ListLocations(d.Locations, logg))

			r.Post("/admin/create/{kind}", controllers.CreateCatalogEntries(d.Catalog, logg))
			r.Delete("/admin/delete/{kind}/{id}", controllers.DeleteCatalogEntry(d.Catalog, logg))
			r.Get("/admin/get/{kind}", controllers.ListCatalog(d.Catalog, "", logg))

			r.Get("/admin/get/users", controllers.ListUsers(d.Users, logg))
			r.Delete("/admin/delete/user/{id}", controllers.DeleteUser(d.Users, logg))
		})
	})

	return r
}
