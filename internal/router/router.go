package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/todo-list-api/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers non-authenticated routes on the provided Echo
// instance.  At the moment it only exposes a health check endpoint that
// load balancers or monitoring systems can probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the registration and login endpoints under
// /api/auth.  Both sit behind the authentication-class rate limiter, which
// runs before any credential work so a flooding client is rejected without
// touching the credential store.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authLimiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", authLimiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterItems registers every protected endpoint under /api.  Middleware
// order matters: the general-class rate limiter first, then identity
// verification, so unauthenticated floods are cut off before any token
// parsing.  The item list additionally sits behind the per-user response
// cache, which runs after identity so keys are always user-scoped.
func RegisterItems(e *echo.Echo, h *handler.ItemHandler, generalLimiter, auth, cache echo.MiddlewareFunc) {
	g := e.Group("/api", generalLimiter, auth)
	g.GET("/me", h.Me)
	g.POST("/item", h.Create)
	g.GET("/items", h.List, cache)
	g.PUT("/item/:id", h.Update)
	g.PATCH("/item/:id/completed", h.SetCompleted)
	g.DELETE("/item/:id", h.Delete)
}
