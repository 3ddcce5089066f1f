package impl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/usecase"
)

func newTestSessionService(sessions *mockSessionRepo) usecase.SessionUsecase {
	return &sessionService{
		sessionRepo: sessions,
		logger:      newDiscardLogger(),
	}
}

func TestSessionService_ListSessions(t *testing.T) {
	sessions := new(mockSessionRepo)
	accountID := uuid.New()
	active := []*entity.Session{
		{ID: uuid.New(), AccountID: accountID},
		{ID: uuid.New(), AccountID: accountID},
	}

	sessions.On("FindActiveByAccountID", mock.Anything, accountID).Return(active, nil)

	service := newTestSessionService(sessions)
	result, err := service.ListSessions(context.Background(), accountID)

	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestSessionService_RevokeSession(t *testing.T) {
	sessions := new(mockSessionRepo)
	accountID := uuid.New()
	sessionID := uuid.New()

	sessions.On("FindActiveByID", mock.Anything, sessionID).
		Return(&entity.Session{ID: sessionID, AccountID: accountID}, nil)
	sessions.On("Delete", mock.Anything, sessionID).Return(nil)

	service := newTestSessionService(sessions)
	err := service.RevokeSession(context.Background(), accountID, sessionID)

	require.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestSessionService_RevokeSession_NotOwned(t *testing.T) {
	sessions := new(mockSessionRepo)
	sessionID := uuid.New()

	// The session belongs to a different account; it must read as missing.
	sessions.On("FindActiveByID", mock.Anything, sessionID).
		Return(&entity.Session{ID: sessionID, AccountID: uuid.New()}, nil)

	service := newTestSessionService(sessions)
	err := service.RevokeSession(context.Background(), uuid.New(), sessionID)

	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSessionService_RevokeSession_Expired(t *testing.T) {
	sessions := new(mockSessionRepo)
	sessionID := uuid.New()

	sessions.On("FindActiveByID", mock.Anything, sessionID).
		Return(nil, repository.ErrSessionExpired)

	service := newTestSessionService(sessions)
	err := service.RevokeSession(context.Background(), uuid.New(), sessionID)

	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
}

func TestSessionService_RevokeAllSessions(t *testing.T) {
	sessions := new(mockSessionRepo)
	accountID := uuid.New()

	sessions.On("DeleteByAccountID", mock.Anything, accountID).Return(nil)

	service := newTestSessionService(sessions)
	err := service.RevokeAllSessions(context.Background(), accountID)

	require.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestSessionService_RevokeAllOtherSessions(t *testing.T) {
	sessions := new(mockSessionRepo)
	accountID := uuid.New()
	current := &entity.Session{ID: uuid.New(), AccountID: accountID}
	other := &entity.Session{ID: uuid.New(), AccountID: accountID}

	sessions.On("FindActiveByAccountID", mock.Anything, accountID).
		Return([]*entity.Session{current, other}, nil)
	sessions.On("Delete", mock.Anything, other.ID).Return(nil)

	service := newTestSessionService(sessions)
	err := service.RevokeAllOtherSessions(context.Background(), accountID, current.ID)

	require.NoError(t, err)
	// The requesting session survives.
	sessions.AssertNotCalled(t, "Delete", mock.Anything, current.ID)
	sessions.AssertExpectations(t)
}
