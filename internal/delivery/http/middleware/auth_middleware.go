package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
)

// Echo context keys populated by Authenticate.
const (
	ContextKeyAccountID = "accountID"
	ContextKeyRole      = "role"
	ContextKeySessionID = "sessionID"
)

// AccessTokenCookie is the cookie fallback for clients that cannot set
// headers (e.g. browser downloads and QR image tags).
const AccessTokenCookie = "harbor_access_token"

// unauthorizedMessage is the single message for every guard failure, so a
// caller cannot tell a missing token from an expired or forged one.
const unauthorizedMessage = "Authentication required"

// AuthMiddleware provides middleware for bearer authentication and role checks.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the access token and stores the caller's identity
// on the echo context. The token is taken from the Authorization header
// first, then the "token" query parameter, then the access token cookie.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return response.Unauthorized(c, "UNAUTHENTICATED", unauthorizedMessage)
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHENTICATED", unauthorizedMessage)
		}

		sessionID, err := claims.SessionID()
		if err != nil {
			return response.Unauthorized(c, "UNAUTHENTICATED", unauthorizedMessage)
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeySessionID, sessionID)

		return next(c)
	}
}

// RequireRole checks the authenticated caller's role. It must be used after
// Authenticate.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(entity.Role)
			if !ok || role != requiredRole {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied")
			}

			return next(c)
		}
	}
}

// GetAccountID returns the authenticated account ID set by Authenticate.
func GetAccountID(c echo.Context) (uuid.UUID, bool) {
	accountID, ok := c.Get(ContextKeyAccountID).(uuid.UUID)

	return accountID, ok
}

// GetRole returns the authenticated role set by Authenticate.
func GetRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(ContextKeyRole).(entity.Role)

	return role, ok
}

// GetSessionID returns the authenticated session ID set by Authenticate.
func GetSessionID(c echo.Context) (uuid.UUID, bool) {
	sessionID, ok := c.Get(ContextKeySessionID).(uuid.UUID)

	return sessionID, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}

		return ""
	}

	if token := c.QueryParam("token"); token != "" {
		return token
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}

	return ""
}
