package impl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/usecase"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	logger      *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		sessionRepo: params.SessionRepo,
		logger:      params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListSessions returns the account's active sessions, newest first.
func (srv *sessionService) ListSessions(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error) {
	sessions, err := srv.sessionRepo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}

	return sessions, nil
}

// RevokeSession deletes one of the account's own sessions. Ownership is
// checked first so an account cannot revoke somebody else's session by ID.
func (srv *sessionService) RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID) error {
	session, err := srv.sessionRepo.FindActiveByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) || errors.Is(err, repository.ErrSessionExpired) {
			return domainerrors.ErrSessionNotFound
		}

		return errors.Wrap(err, "failed to load session")
	}

	if session.AccountID != accountID {
		return domainerrors.ErrSessionNotFound
	}

	if err := srv.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionNotFound
		}

		return errors.Wrap(err, "failed to delete session")
	}

	srv.log(ctx).Info("Session revoked",
		slog.String("accountId", accountID.String()),
		slog.String("sessionId", sessionID.String()),
	)

	return nil
}

// RevokeAllSessions signs the account out everywhere.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, accountID uuid.UUID) error {
	if err := srv.sessionRepo.DeleteByAccountID(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to delete sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.String("accountId", accountID.String()))

	return nil
}

// RevokeAllOtherSessions signs the account out everywhere except the
// session making the request.
func (srv *sessionService) RevokeAllOtherSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) error {
	sessions, err := srv.sessionRepo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to list sessions")
	}

	for _, session := range sessions {
		if session.ID == currentSessionID {
			continue
		}

		if err := srv.sessionRepo.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			return errors.Wrap(err, "failed to delete session")
		}
	}

	srv.log(ctx).Info("Other sessions revoked",
		slog.String("accountId", accountID.String()),
		slog.String("keptSessionId", currentSessionID.String()),
	)

	return nil
}
