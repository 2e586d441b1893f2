package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/catalog"
	"library-backend/internal/database"
	"library-backend/internal/notify"
	"library-backend/internal/sso"
)

var (
	authService    *auth.Service
	catalogService *catalog.Service
	memberRepo     *database.MemberRepo
	settingsRepo   *database.SettingsRepo
	hub            *notify.Hub
	ssoClient      *sso.Client
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, store *database.Store, h *notify.Hub, ssoCli *sso.Client) {
	authService = auth.NewService(store)
	catalogService = catalog.NewService(store)
	memberRepo = database.NewMemberRepo(store)
	settingsRepo = database.NewSettingsRepo(store)
	InitAudit(store)
	hub = h
	ssoClient = ssoCli

	loginLimiter = newLoginLimiter(settingsRepo)

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - establishing credentials needs no token)
	authGroup := api.Group("/auth")
	authGroup.POST("/join", joinHandler, loginLimiter.Middleware())
	authGroup.POST("/login", loginHandler, loginLimiter.Middleware())
	authGroup.POST("/logout", logoutHandler)

	if ssoClient != nil {
		authGroup.GET("/sso/login", ssoLoginHandler)
		authGroup.GET("/sso/callback", ssoCallbackHandler)
	}

	// Protected auth routes
	authProtected := authGroup.Group("")
	authProtected.Use(auth.RequireAuth(authService))
	authProtected.GET("/me", getCurrentMember)

	// Catalog routes (authenticated)
	resources := api.Group("/resources")
	resources.Use(auth.RequireAuth(authService))
	resources.GET("/search", searchResourcesHandler)
	resources.POST("", addResourceHandler)
	resources.GET("/:id", getResourceHandler)
	resources.GET("/:id/stock", listStockHandler)
	resources.DELETE("/:id", deactivateResourceHandler)

	// Lending routes (authenticated)
	borrows := api.Group("/borrows")
	borrows.Use(auth.RequireAuth(authService))
	borrows.GET("", listBorrowsHandler)
	borrows.POST("/checkout", checkoutHandler)
	borrows.POST("/checkin", checkinHandler)

	// Member routes (authenticated)
	members := api.Group("/members")
	members.Use(auth.RequireAuth(authService))
	members.DELETE("/:id", deactivateMemberHandler)

	// Audit log (authenticated)
	audit := api.Group("/audit")
	audit.Use(auth.RequireAuth(authService))
	audit.GET("", listAuditLogsHandler)

	// Notifications (authenticated)
	notifications := api.Group("/notifications")
	notifications.Use(auth.RequireAuth(authService))
	notifications.GET("/ws", notificationsHandler)
}

var loginLimiter *auth.RateLimiter

// newLoginLimiter builds the login rate limiter from settings, falling
// back to the defaults when the settings table is unreadable.
func newLoginLimiter(settings *database.SettingsRepo) *auth.RateLimiter {
	maxAttempts, err := settings.GetInt(database.SettingLoginMaxAttempts)
	if err != nil || maxAttempts <= 0 {
		return auth.DefaultRateLimiter()
	}
	windowMinutes, err := settings.GetInt(database.SettingLoginWindowMinutes)
	if err != nil || windowMinutes <= 0 {
		return auth.DefaultRateLimiter()
	}
	window := time.Duration(windowMinutes) * time.Minute
	return auth.NewRateLimiter(maxAttempts, window, window)
}
