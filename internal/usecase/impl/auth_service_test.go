package impl

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/usecase"
)

// authFixtures holds all test dependencies for auth service tests.
type authFixtures struct {
	service  usecase.AuthUsecase
	accounts *mockAccountRepo
	sessions *mockSessionRepo
	tokens   *mockTokenRepo
	hasher   *mockHasher
	tokenSvc *mockTokenService
	verifier *mockIDTokenVerifier
	codeFlow *mockCodeFlow
	events   *mockPublisher
}

func newAuthFixtures() authFixtures {
	accounts := new(mockAccountRepo)
	sessions := new(mockSessionRepo)
	tokens := new(mockTokenRepo)
	hasher := new(mockHasher)
	tokenSvc := new(mockTokenService)
	verifier := new(mockIDTokenVerifier)
	codeFlow := new(mockCodeFlow)
	events := new(mockPublisher)

	factory := &stubRepoFactory{accounts: accounts, sessions: sessions, tokens: tokens}

	svc := &authService{
		txManager:      &stubTxManager{factory: factory},
		accountRepo:    accounts,
		sessionRepo:    sessions,
		tokenRepo:      tokens,
		hasher:         hasher,
		tokenService:   tokenSvc,
		googleIDToken:  verifier,
		googleCodeFlow: codeFlow,
		events:         events,
		cfg:            newTestConfig(),
		logger:         newDiscardLogger(),
	}

	return authFixtures{
		service:  svc,
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		tokenSvc: tokenSvc,
		verifier: verifier,
		codeFlow: codeFlow,
		events:   events,
	}
}

func refreshClaims(sessionID uuid.UUID) *service.Claims {
	return &service.Claims{
		Type: service.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: sessionID.String(),
		},
	}
}

func TestAuthService_SignUpCustomer_Success(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	input := usecase.SignUpCustomerInput{
		Email:    "New.Customer@Example.COM",
		Password: "Str0ng!Password",
		Country:  "NL",
		City:     "Amsterdam",
	}

	fx.hasher.On("Hash", input.Password).Return("hashed_password", nil)
	fx.accounts.On("FindByEmail", ctx, "new.customer@example.com").
		Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("Create", ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Account).ID = uuid.New()
		}).
		Return(nil)
	fx.tokens.On("DeleteByAccountAndType", ctx, mock.Anything, entity.TokenTypeEmailVerification).Return(nil)
	fx.tokens.On("Create", ctx, mock.AnythingOfType("*entity.VerificationToken")).Return(nil)
	fx.events.On("PublishAccountEvent", ctx, mock.MatchedBy(func(event *service.AccountEvent) bool {
		return event.EventType == service.AccountEventEmailVerification &&
			event.Email == "new.customer@example.com" &&
			event.Token != ""
	})).Return(nil)

	output, err := fx.service.SignUpCustomer(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "new.customer@example.com", output.Account.Email)
	assert.Equal(t, entity.RoleCustomer, output.Account.Role)
	fx.events.AssertExpectations(t)
	fx.tokens.AssertExpectations(t)
}

func TestAuthService_SignUpCustomer_EmailTaken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	fx.hasher.On("Hash", mock.Anything).Return("hashed_password", nil)
	fx.accounts.On("FindByEmail", ctx, "taken@example.com").
		Return(&entity.Account{ID: uuid.New(), Email: "taken@example.com"}, nil)

	output, err := fx.service.SignUpCustomer(ctx, usecase.SignUpCustomerInput{
		Email:    "taken@example.com",
		Password: "Str0ng!Password",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyInUse))
	fx.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignUpCustomer_WeakPassword(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	fx.hasher.On("Hash", "weak").Return("", domainerrors.ErrPasswordStrength)

	output, err := fx.service.SignUpCustomer(ctx, usecase.SignUpCustomerInput{
		Email:    "new@example.com",
		Password: "weak",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
	fx.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignIn_Success(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: "hashed_password",
		Role:         entity.RoleCustomer,
	}

	fx.accounts.On("FindByEmail", ctx, account.Email).Return(account, nil)
	fx.hasher.On("Check", "Str0ng!Password", account.PasswordHash).Return(true)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(60 * 24 * time.Hour)
	fx.sessions.On("Create", ctx, mock.AnythingOfType("*entity.Session")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Session).ID = uuid.New()
		}).
		Return(nil)
	fx.tokenSvc.On("GenerateAuthTokens", mock.Anything, account.ID, entity.RoleCustomer).
		Return("access_token", "refresh_token", nil)

	output, err := fx.service.SignIn(ctx, usecase.SignInInput{
		Email:     "customer@example.com",
		Password:  "Str0ng!Password",
		IPAddress: "203.0.113.7",
		UserAgent: "harbor-test",
	})

	require.NoError(t, err)
	assert.Equal(t, "access_token", output.AccessToken)
	assert.Equal(t, "refresh_token", output.RefreshToken)
	assert.Equal(t, account, output.Account)
}

func TestAuthService_SignIn_GenericCredentialsError(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	oauthOnly := &entity.Account{ID: uuid.New(), Email: "oauth@example.com"}
	withPassword := &entity.Account{ID: uuid.New(), Email: "known@example.com", PasswordHash: "hashed"}

	fx.accounts.On("FindByEmail", ctx, "unknown@example.com").Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("FindByEmail", ctx, "oauth@example.com").Return(oauthOnly, nil)
	fx.accounts.On("FindByEmail", ctx, "known@example.com").Return(withPassword, nil)
	fx.hasher.On("Check", "wrong", "hashed").Return(false)

	// Unknown account, password-less account and wrong password are
	// indistinguishable from the outside.
	for _, email := range []string{"unknown@example.com", "oauth@example.com", "known@example.com"} {
		output, err := fx.service.SignIn(ctx, usecase.SignInInput{Email: email, Password: "wrong"})

		assert.Nil(t, output)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials), "email %s", email)
	}

	fx.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	oldSessionID := uuid.New()
	account := &entity.Account{ID: uuid.New(), Role: entity.RoleCustomer}
	oldSession := &entity.Session{ID: oldSessionID, AccountID: account.ID}

	fx.tokenSvc.On("ValidateRefreshToken", "old_refresh").Return(refreshClaims(oldSessionID), nil)
	fx.sessions.On("FindActiveByID", ctx, oldSessionID).Return(oldSession, nil)
	fx.sessions.On("Delete", ctx, oldSessionID).Return(nil)
	fx.accounts.On("FindByID", ctx, account.ID).Return(account, nil)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(60 * 24 * time.Hour)
	fx.sessions.On("Create", ctx, mock.AnythingOfType("*entity.Session")).
		Run(func(args mock.Arguments) {
			session := args.Get(1).(*entity.Session)
			session.ID = uuid.New()
			assert.Equal(t, "198.51.100.4", session.IPAddress)
		}).
		Return(nil)
	fx.tokenSvc.On("GenerateAuthTokens", mock.Anything, account.ID, entity.RoleCustomer).
		Return("new_access", "new_refresh", nil)

	output, err := fx.service.Refresh(ctx, usecase.RefreshInput{
		RefreshToken: "old_refresh",
		IPAddress:    "198.51.100.4",
		UserAgent:    "harbor-test",
	})

	require.NoError(t, err)
	assert.Equal(t, "new_refresh", output.RefreshToken)
	fx.sessions.AssertExpectations(t)
}

func TestAuthService_Refresh_LostRace(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	sessionID := uuid.New()
	session := &entity.Session{ID: sessionID, AccountID: uuid.New()}

	fx.tokenSvc.On("ValidateRefreshToken", "raced_refresh").Return(refreshClaims(sessionID), nil)
	fx.sessions.On("FindActiveByID", ctx, sessionID).Return(session, nil)
	// A concurrent refresh already rotated the session away.
	fx.sessions.On("Delete", ctx, sessionID).Return(repository.ErrSessionNotFound)

	output, err := fx.service.Refresh(ctx, usecase.RefreshInput{RefreshToken: "raced_refresh"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
	fx.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	sessionID := uuid.New()

	fx.tokenSvc.On("ValidateRefreshToken", "stale_refresh").Return(refreshClaims(sessionID), nil)
	fx.sessions.On("FindActiveByID", ctx, sessionID).Return(nil, repository.ErrSessionExpired)

	output, err := fx.service.Refresh(ctx, usecase.RefreshInput{RefreshToken: "stale_refresh"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	fx.tokenSvc.On("ValidateRefreshToken", "garbage").Return(nil, errors.New("failed to parse token"))

	output, err := fx.service.Refresh(ctx, usecase.RefreshInput{RefreshToken: "garbage"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_SignOut_Idempotent(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	sessionID := uuid.New()

	fx.tokenSvc.On("ValidateRefreshToken", "dead_refresh").Return(refreshClaims(sessionID), nil)
	fx.tokenSvc.On("ValidateRefreshToken", "garbage").Return(nil, errors.New("failed to parse token"))
	fx.sessions.On("Delete", ctx, sessionID).Return(repository.ErrSessionNotFound)

	// An already-revoked session and an unparseable token both succeed.
	assert.NoError(t, fx.service.SignOut(ctx, "dead_refresh"))
	assert.NoError(t, fx.service.SignOut(ctx, "garbage"))
}

func TestAuthService_GoogleCallbackCustomer_CreatesAccount(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	oauthUser := &service.OAuthUser{
		ID:            "google-sub-1",
		Email:         "fresh@example.com",
		Provider:      entity.ProviderTypeGoogle,
		EmailVerified: true,
	}

	fx.codeFlow.On("Exchange", ctx, "auth_code", "state_value").Return(oauthUser, nil)
	fx.accounts.On("FindByProvider", ctx, entity.ProviderTypeGoogle, "google-sub-1").
		Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("FindByEmail", ctx, "fresh@example.com").
		Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("Create", ctx, mock.MatchedBy(func(account *entity.Account) bool {
		return account.Role == entity.RoleCustomer &&
			account.Provider == entity.ProviderTypeGoogle &&
			account.EmailVerified &&
			!account.HasPassword()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Account).ID = uuid.New()
	}).Return(nil)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(60 * 24 * time.Hour)
	fx.sessions.On("Create", ctx, mock.AnythingOfType("*entity.Session")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Session).ID = uuid.New()
		}).
		Return(nil)
	fx.tokenSvc.On("GenerateAuthTokens", mock.Anything, mock.Anything, entity.RoleCustomer).
		Return("access_token", "refresh_token", nil)

	output, err := fx.service.GoogleCallbackCustomer(ctx, usecase.GoogleCallbackInput{
		Code:  "auth_code",
		State: "state_value",
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", output.Account.Email)
	fx.accounts.AssertExpectations(t)
}

func TestAuthService_GoogleCallbackCustomer_LinksByEmail(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	existing := &entity.Account{
		ID:           uuid.New(),
		Email:        "existing@example.com",
		PasswordHash: "hashed",
		Role:         entity.RoleCustomer,
		Provider:     entity.ProviderTypeEmail,
	}
	oauthUser := &service.OAuthUser{
		ID:            "google-sub-2",
		Email:         "existing@example.com",
		Provider:      entity.ProviderTypeGoogle,
		EmailVerified: true,
	}

	fx.codeFlow.On("Exchange", ctx, "auth_code", "state_value").Return(oauthUser, nil)
	fx.accounts.On("FindByProvider", ctx, entity.ProviderTypeGoogle, "google-sub-2").
		Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("FindByEmail", ctx, "existing@example.com").Return(existing, nil)
	fx.accounts.On("Update", ctx, mock.MatchedBy(func(account *entity.Account) bool {
		return account.ID == existing.ID &&
			account.Provider == entity.ProviderTypeGoogle &&
			account.ProviderAccountID == "google-sub-2"
	})).Return(nil)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(60 * 24 * time.Hour)
	fx.sessions.On("Create", ctx, mock.AnythingOfType("*entity.Session")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Session).ID = uuid.New()
		}).
		Return(nil)
	fx.tokenSvc.On("GenerateAuthTokens", mock.Anything, existing.ID, entity.RoleCustomer).
		Return("access_token", "refresh_token", nil)

	output, err := fx.service.GoogleCallbackCustomer(ctx, usecase.GoogleCallbackInput{
		Code:  "auth_code",
		State: "state_value",
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, output.Account.ID)
	fx.accounts.AssertExpectations(t)
}

func TestAuthService_GoogleCallbackAdmin_NoAutoCreate(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	oauthUser := &service.OAuthUser{
		ID:       "google-sub-3",
		Email:    "stranger@example.com",
		Provider: entity.ProviderTypeGoogle,
	}

	fx.codeFlow.On("Exchange", ctx, "auth_code", "state_value").Return(oauthUser, nil)
	fx.accounts.On("FindByProvider", ctx, entity.ProviderTypeGoogle, "google-sub-3").
		Return(nil, repository.ErrAccountNotFound)
	fx.accounts.On("FindByEmail", ctx, "stranger@example.com").
		Return(nil, repository.ErrAccountNotFound)

	output, err := fx.service.GoogleCallbackAdmin(ctx, usecase.GoogleCallbackInput{
		Code:  "auth_code",
		State: "state_value",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAdminAccountNotFound))
	fx.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_GoogleCallbackAdmin_RejectsCustomerRole(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	customer := &entity.Account{
		ID:                uuid.New(),
		Email:             "customer@example.com",
		Role:              entity.RoleCustomer,
		Provider:          entity.ProviderTypeGoogle,
		ProviderAccountID: "google-sub-4",
	}
	oauthUser := &service.OAuthUser{
		ID:       "google-sub-4",
		Email:    "customer@example.com",
		Provider: entity.ProviderTypeGoogle,
	}

	fx.codeFlow.On("Exchange", ctx, "auth_code", "state_value").Return(oauthUser, nil)
	fx.accounts.On("FindByProvider", ctx, entity.ProviderTypeGoogle, "google-sub-4").
		Return(customer, nil)

	output, err := fx.service.GoogleCallbackAdmin(ctx, usecase.GoogleCallbackInput{
		Code:  "auth_code",
		State: "state_value",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrAdminAccountNotFound))
}

func TestAuthService_SignInWithGoogleIDToken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{
		ID:                uuid.New(),
		Email:             "mobile@example.com",
		Role:              entity.RoleCustomer,
		Provider:          entity.ProviderTypeGoogle,
		ProviderAccountID: "google-sub-5",
	}
	oauthUser := &service.OAuthUser{
		ID:       "google-sub-5",
		Email:    "mobile@example.com",
		Provider: entity.ProviderTypeGoogle,
	}

	fx.verifier.On("VerifyIDToken", ctx, "id_token_value").Return(oauthUser, nil)
	fx.accounts.On("FindByProvider", ctx, entity.ProviderTypeGoogle, "google-sub-5").
		Return(account, nil)
	fx.tokenSvc.On("GetRefreshTokenDuration").Return(60 * 24 * time.Hour)
	fx.sessions.On("Create", ctx, mock.AnythingOfType("*entity.Session")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Session).ID = uuid.New()
		}).
		Return(nil)
	fx.tokenSvc.On("GenerateAuthTokens", mock.Anything, account.ID, entity.RoleCustomer).
		Return("access_token", "refresh_token", nil)

	output, err := fx.service.SignInWithGoogleIDToken(ctx, "id_token_value", "203.0.113.9", "harbor-mobile")

	require.NoError(t, err)
	assert.Equal(t, account.ID, output.Account.ID)
}

func TestAuthService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	fx.accounts.On("FindByEmail", ctx, "unknown@example.com").
		Return(nil, repository.ErrAccountNotFound)

	err := fx.service.RequestPasswordReset(ctx, "unknown@example.com")

	// A plain business error, not an internal failure.
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
	fx.events.AssertNotCalled(t, "PublishAccountEvent", mock.Anything, mock.Anything)
}

func TestAuthService_RequestPasswordReset_IssuesToken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{ID: uuid.New(), Email: "known@example.com"}

	fx.accounts.On("FindByEmail", ctx, account.Email).Return(account, nil)
	fx.tokens.On("DeleteByAccountAndType", ctx, account.ID, entity.TokenTypePasswordReset).Return(nil)
	fx.tokens.On("Create", ctx, mock.MatchedBy(func(token *entity.VerificationToken) bool {
		return token.Type == entity.TokenTypePasswordReset &&
			token.AccountID == account.ID &&
			len(token.Token) == 64 &&
			token.ExpiresAt.After(time.Now())
	})).Return(nil)
	fx.events.On("PublishAccountEvent", ctx, mock.MatchedBy(func(event *service.AccountEvent) bool {
		return event.EventType == service.AccountEventPasswordReset && event.Token != ""
	})).Return(nil)

	err := fx.service.RequestPasswordReset(ctx, "known@example.com")

	require.NoError(t, err)
	fx.tokens.AssertExpectations(t)
	fx.events.AssertExpectations(t)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{ID: uuid.New(), Email: "reset@example.com", PasswordHash: "old_hash"}
	token := &entity.VerificationToken{
		ID:        uuid.New(),
		Token:     "reset_token_value",
		Type:      entity.TokenTypePasswordReset,
		AccountID: account.ID,
	}

	fx.hasher.On("Hash", "New!Password9").Return("new_hash", nil)
	fx.tokens.On("FindByToken", ctx, "reset_token_value", entity.TokenTypePasswordReset).Return(token, nil)
	fx.tokens.On("Consume", ctx, token.ID).Return(nil)
	fx.accounts.On("FindByID", ctx, account.ID).Return(account, nil)
	fx.accounts.On("Update", ctx, mock.MatchedBy(func(updated *entity.Account) bool {
		return updated.PasswordHash == "new_hash"
	})).Return(nil)
	fx.sessions.On("DeleteByAccountID", ctx, account.ID).Return(nil)
	fx.events.On("PublishAccountEvent", ctx, mock.MatchedBy(func(event *service.AccountEvent) bool {
		return event.EventType == service.AccountEventPasswordChanged
	})).Return(nil)

	err := fx.service.ResetPassword(ctx, usecase.ResetPasswordInput{
		Token:       "reset_token_value",
		NewPassword: "New!Password9",
	})

	require.NoError(t, err)
	fx.sessions.AssertExpectations(t)
	fx.events.AssertExpectations(t)
}

func TestAuthService_ResetPassword_ConsumedToken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	token := &entity.VerificationToken{ID: uuid.New(), AccountID: uuid.New()}

	fx.hasher.On("Hash", "New!Password9").Return("new_hash", nil)
	fx.tokens.On("FindByToken", ctx, "spent_token", entity.TokenTypePasswordReset).Return(token, nil)
	// The concurrent redemption won the conditional delete.
	fx.tokens.On("Consume", ctx, token.ID).Return(repository.ErrVerificationTokenNotFound)

	err := fx.service.ResetPassword(ctx, usecase.ResetPasswordInput{
		Token:       "spent_token",
		NewPassword: "New!Password9",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrVerificationTokenInvalid))
	fx.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{ID: uuid.New(), Email: "verify@example.com"}
	token := &entity.VerificationToken{
		ID:        uuid.New(),
		Token:     "verify_token_value",
		Type:      entity.TokenTypeEmailVerification,
		AccountID: account.ID,
	}

	fx.tokens.On("FindByToken", ctx, "verify_token_value", entity.TokenTypeEmailVerification).Return(token, nil)
	fx.tokens.On("Consume", ctx, token.ID).Return(nil)
	fx.accounts.On("FindByID", ctx, account.ID).Return(account, nil)
	fx.accounts.On("Update", ctx, mock.MatchedBy(func(updated *entity.Account) bool {
		return updated.EmailVerified
	})).Return(nil)
	fx.events.On("PublishAccountEvent", ctx, mock.MatchedBy(func(event *service.AccountEvent) bool {
		return event.EventType == service.AccountEventEmailVerified
	})).Return(nil)

	err := fx.service.VerifyEmail(ctx, "verify_token_value")

	require.NoError(t, err)
	fx.accounts.AssertExpectations(t)
}

func TestAuthService_VerifyEmail_UnknownToken(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	fx.tokens.On("FindByToken", ctx, "missing_token", entity.TokenTypeEmailVerification).
		Return(nil, repository.ErrVerificationTokenNotFound)

	err := fx.service.VerifyEmail(ctx, "missing_token")

	assert.True(t, errors.Is(err, domainerrors.ErrVerificationTokenInvalid))
}

func TestAuthService_RequestEmailVerification_AlreadyVerified(t *testing.T) {
	fx := newAuthFixtures()
	ctx := context.Background()

	account := &entity.Account{ID: uuid.New(), Email: "done@example.com", EmailVerified: true}

	fx.accounts.On("FindByID", ctx, account.ID).Return(account, nil)

	err := fx.service.RequestEmailVerification(ctx, account.ID)

	assert.NoError(t, err)
	fx.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
