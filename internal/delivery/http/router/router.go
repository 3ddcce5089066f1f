// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/router/handler"
	"harbor/internal/domain/entity"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	SessionHandler *handler.SessionHandler
	MediaHandler   *handler.MediaHandler
	AuthMiddleware *middleware.AuthMiddleware
	CacheMW        *middleware.CacheMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	sessionHandler *handler.SessionHandler
	mediaHandler   *handler.MediaHandler
	authMiddleware *middleware.AuthMiddleware
	cacheMW        *middleware.CacheMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accountHandler: params.AccountHandler,
		sessionHandler: params.SessionHandler,
		mediaHandler:   params.MediaHandler,
		authMiddleware: params.AuthMiddleware,
		cacheMW:        params.CacheMW,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signin", r.authHandler.SignIn)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/signout", r.authHandler.SignOut)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)

		authGroup.GET("/google", r.authHandler.GoogleSignIn)
		authGroup.GET("/google/callback", r.authHandler.GoogleCallback)
		authGroup.GET("/google/admin", r.authHandler.GoogleAdminSignIn)
		authGroup.GET("/google/admin/callback", r.authHandler.GoogleAdminCallback)
		authGroup.POST("/google/id-token", r.authHandler.GoogleIDTokenSignIn)
	}

	// Customer account lifecycle
	customerGroup := e.Group("/customers")
	{
		customerGroup.POST("/signup", r.accountHandler.SignUp)
		customerGroup.POST("/request-password-reset", r.accountHandler.RequestPasswordReset)
		customerGroup.POST("/reset-password", r.accountHandler.ResetPassword)
		customerGroup.POST("/verify-email", r.accountHandler.VerifyEmail)
		customerGroup.POST("/request-email-verification", r.accountHandler.RequestEmailVerification, r.authMiddleware.Authenticate)
	}

	// Session management requires authentication
	sessionGroup := e.Group("/sessions")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.GET("", r.sessionHandler.List)
		sessionGroup.DELETE("/:id", r.sessionHandler.Revoke)
		sessionGroup.DELETE("", r.sessionHandler.RevokeOthers)
	}

	// Admin operations sit behind the role guard.
	adminGroup := e.Group("/admin", r.authMiddleware.Authenticate, r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.DELETE("/accounts/:id/sessions", r.sessionHandler.RevokeAccountSessions)
	}

	// Media requires authentication; listings are cached and mutations bust
	// the caller's cached pages.
	mediaGroup := e.Group("/media")
	mediaGroup.Use(r.authMiddleware.Authenticate)
	{
		mediaGroup.POST("", r.mediaHandler.Upload, r.cacheMW.InvalidateAfter)
		mediaGroup.GET("", r.mediaHandler.List, r.cacheMW.Cache)
		mediaGroup.GET("/:id", r.mediaHandler.Download)
		mediaGroup.GET("/:id/share", r.mediaHandler.Share)
		mediaGroup.DELETE("/:id", r.mediaHandler.Delete, r.cacheMW.InvalidateAfter)
	}
}
