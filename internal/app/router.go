package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cadet-portal/cadet-portal/internal/achievements"
	"github.com/cadet-portal/cadet-portal/internal/attendance"
	"github.com/cadet-portal/cadet-portal/internal/audit"
	"github.com/cadet-portal/cadet-portal/internal/auth"
	"github.com/cadet-portal/cadet-portal/internal/events"
	"github.com/cadet-portal/cadet-portal/internal/fallin"
	"github.com/cadet-portal/cadet-portal/internal/notifications"
	"github.com/cadet-portal/cadet-portal/internal/observability"
	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/profile"
	"github.com/cadet-portal/cadet-portal/internal/reports"
	"github.com/cadet-portal/cadet-portal/internal/settings"
	"github.com/cadet-portal/cadet-portal/internal/support"
	"github.com/cadet-portal/cadet-portal/internal/users"
	"github.com/cadet-portal/cadet-portal/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Uploads http.Handler

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	ProfileHandler       *profile.Handler
	FallinHandler        *fallin.Handler
	AttendanceHandler    *attendance.Handler
	EventsHandler        *events.Handler
	AchievementsHandler  *achievements.Handler
	NotificationsHandler *notifications.Handler
	SupportHandler       *support.Handler
	SettingsHandler      *settings.Handler
	ReportsHandler       *reports.Handler
	AuditHandler         *audit.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router serving the cadet portal API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.Text(w, http.StatusOK, "Cadet portal API is live!")
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.Uploads != nil {
		r.Handle("/uploads/*", params.Uploads)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthHandler.Authenticate)

		r.Route("/change-password", params.AuthHandler.MountPasswordRoutes)
		r.Route("/users", params.ProfileHandler.MountCadetRoutes)
		r.Route("/fallin", params.FallinHandler.MountRoutes)
		r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		r.Route("/events", params.EventsHandler.MountRoutes)
		r.Route("/achievements", params.AchievementsHandler.MountRoutes)
		r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		r.Route("/support-queries", params.SupportHandler.MountRoutes)

		r.Route("/admin", func(r chi.Router) {
			r.Route("/manage-users", params.UsersHandler.MountUnitRoutes)
			r.Route("/reports", params.ReportsHandler.MountAdminRoutes)
			r.Group(params.ProfileHandler.MountAdminRoutes)
		})

		r.Route("/master", func(r chi.Router) {
			r.Route("/manage-users", params.UsersHandler.MountCadetRoutes)
			r.Route("/manage-admins", params.UsersHandler.MountAdminRoutes)
			r.Route("/notification-manager", params.NotificationsHandler.MountManagerRoutes)
			r.Route("/support-queries", params.SupportHandler.MountMasterRoutes)
			r.Route("/platform-config", params.SettingsHandler.MountRoutes)
			r.Route("/system-reports", params.ReportsHandler.MountSystemRoutes)
			r.Route("/global-search", params.ReportsHandler.MountSearchRoutes)
			r.Route("/system-logs", params.AuditHandler.MountRoutes)
			if params.JobHandler != nil {
				r.Route("/backup-restore", params.JobHandler.MountRoutes)
			}
			r.Group(params.ProfileHandler.MountMasterRoutes)
		})
	})

	return r
}
