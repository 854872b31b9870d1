package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/ateliermori/commission-api/internal/config"
	"github.com/ateliermori/commission-api/internal/handler"
	"github.com/ateliermori/commission-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check, and the public gallery when a
// handler is supplied.  Gallery responses go through the Redis response
// cache so repeated visitor traffic rarely reaches the upstream content API.
func RegisterRoutes(e *echo.Echo, g *handler.GalleryHandler, rdb *redis.Client) {
	// Load balancers and monitoring hit this to verify the service is up.
	e.GET("/healthz", handler.Health)

	if g == nil {
		return // gallery not configured; the rest of the site works without it
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	pub := e.Group("/v1/gallery", cache)
	// One page of published media; ?after= carries the pagination cursor.
	pub.GET("", g.List)
	// Sub-items of a carousel post.
	pub.GET("/:id/children", g.Children)
}

// RegisterAuth registers all authentication-related routes.  Operations
// that establish or exchange a session live under /v1/auth and require no
// token; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Account creation; the first pair of tokens is returned immediately.
	g.POST("/register", a.Register)
	// Exchange credentials for a token pair.
	g.POST("/login", a.Login)
	// Rotate the refresh token and mint a new access token.
	g.POST("/refresh", a.Refresh)
	// Revoke the presented refresh token, ending that session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("CLIENT", "ADMIN"))
	// Identity echo for the signed-in user.
	auth.GET("/me", a.Me)
}

// RegisterClient registers every signed-in route: the caller's measurement
// profile and preferences, commission submission and management, and the
// per-commission conversation.  Both roles pass the gate; per-record
// ownership checks happen inside the handlers.
func RegisterClient(e *echo.Echo, jwtSecret string,
	m *handler.MeasurementHandler, p *handler.PreferencesHandler,
	com *handler.CommissionHandler, msg *handler.MessageHandler) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CLIENT", "ADMIN"))

	// Reusable measurement profile; saves are partial, omitted fields keep
	// their stored value.
	g.GET("/me/measurements", m.Get)
	g.PUT("/me/measurements", m.Save)
	g.DELETE("/me/measurements", m.Clear)
	// Notification preferences.
	g.GET("/me/preferences", p.Get)
	g.PUT("/me/preferences", p.Save)
	// Personal data deletion: measurements, preferences and all sessions.
	g.DELETE("/me/data", m.DeleteData)

	// Commission lifecycle.  Creation always starts at Pending; edits are
	// owner-only while Pending; cancel is the owner's single transition.
	g.POST("/commissions", com.Create)
	g.GET("/commissions", com.List)
	g.GET("/commissions/:id", com.Get)
	g.PATCH("/commissions/:id", com.Update)
	g.POST("/commissions/:id/cancel", com.Cancel)

	// Per-commission conversation: append, list with unread count,
	// mark-read and the live SSE stream.
	g.POST("/commissions/:id/messages", msg.Post)
	g.GET("/commissions/:id/messages", msg.List)
	g.POST("/commissions/:id/messages/read", msg.MarkRead)
	g.GET("/commissions/:id/messages/stream", msg.Stream)
}

// RegisterAdmin registers the operator routes under /v1/admin.  The role
// middleware admits only the single derived ADMIN identity.
func RegisterAdmin(e *echo.Echo, jwtSecret string, a *handler.AdminCommissionHandler) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	// Every commission in the system with owner identity attached.
	g.GET("/commissions", a.ListAll)
	// Unrestricted status transition; any status from any status.
	g.PATCH("/commissions/:id/status", a.TransitionStatus)
}
