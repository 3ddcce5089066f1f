package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	"harbor/internal/usecase"
)

// SessionHandler holds dependencies for session management handlers.
type SessionHandler struct {
	uc     usecase.SessionUsecase
	logger *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{uc: uc, logger: logger}
}

type sessionResponse struct {
	ID        uuid.UUID `json:"id"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Current   bool      `json:"current"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the caller's active sessions, marking the one behind this
// request.
func (h *SessionHandler) List(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}
	currentSessionID, _ := middleware.GetSessionID(c)

	sessions, err := h.uc.ListSessions(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	result := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, newSessionResponse(session, currentSessionID))
	}

	return response.Success(c, http.StatusOK, result, "Sessions retrieved successfully")
}

// Revoke deletes one of the caller's sessions by ID.
func (h *SessionHandler) Revoke(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.NotFound(c, "SESSION_NOT_FOUND", "Session not found")
	}

	if err := h.uc.RevokeSession(c.Request().Context(), accountID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Session revoked successfully")
}

// RevokeOthers signs the caller out everywhere except the current session.
func (h *SessionHandler) RevokeOthers(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}
	currentSessionID, ok := middleware.GetSessionID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.uc.RevokeAllOtherSessions(c.Request().Context(), accountID, currentSessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Other sessions revoked successfully")
}

// RevokeAccountSessions force-signs an account out everywhere. Reachable
// only behind the admin role guard.
func (h *SessionHandler) RevokeAccountSessions(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.NotFound(c, "ACCOUNT_NOT_FOUND", "Account not found")
	}

	if err := h.uc.RevokeAllSessions(c.Request().Context(), accountID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account sessions revoked successfully")
}

// --- Mapper Functions ---

func newSessionResponse(session *entity.Session, currentSessionID uuid.UUID) sessionResponse {
	return sessionResponse{
		ID:        session.ID,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
		Current:   session.ID == currentSessionID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
}
