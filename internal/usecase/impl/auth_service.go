// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"harbor/config"
	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/usecase"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager      repository.TransactionManager
	accountRepo    repository.AccountRepository
	sessionRepo    repository.SessionRepository
	tokenRepo      repository.VerificationTokenRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	googleIDToken  service.OAuthAuthService
	googleCodeFlow service.OAuthCodeFlowService
	events         service.EventPublisher
	cfg            *config.Config
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	AccountRepo    repository.AccountRepository
	SessionRepo    repository.SessionRepository
	TokenRepo      repository.VerificationTokenRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	GoogleIDToken  service.OAuthAuthService
	GoogleCodeFlow service.OAuthCodeFlowService
	Events         service.EventPublisher
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:      params.TxManager,
		accountRepo:    params.AccountRepo,
		sessionRepo:    params.SessionRepo,
		tokenRepo:      params.TokenRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		googleIDToken:  params.GoogleIDToken,
		googleCodeFlow: params.GoogleCodeFlow,
		events:         params.Events,
		cfg:            params.Config,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUpCustomer orchestrates the customer registration process.
func (srv *authService) SignUpCustomer(ctx context.Context, input usecase.SignUpCustomerInput) (*usecase.SignUpOutput, error) {
	// 1. Normalize and validate the email.
	email, err := entity.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	// 2. Enforce the password policy before touching the database.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Warn("Password rejected during signup", slog.String("email", email.String()), slog.Any("error", err))

		return nil, err
	}

	// 3. Create the account and its profile in one transaction.
	newAccount := &entity.Account{
		Email:        email.String(),
		PasswordHash: hashedPassword,
		Role:         entity.RoleCustomer,
		Provider:     entity.ProviderTypeEmail,
		CustomerProfile: &entity.CustomerProfile{
			Country: input.Country,
			City:    input.City,
		},
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		_, err := accountRepo.FindByEmail(ctx, email.String())
		if err == nil {
			return domainerrors.ErrEmailAlreadyInUse
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		if err := accountRepo.Create(ctx, newAccount); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return domainerrors.ErrEmailAlreadyInUse
			}

			return errors.Wrap(err, "failed to create account")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute signup transaction", slog.String("email", email.String()), slog.Any("error", err))

		return nil, err
	}

	// 4. Issue the email verification token outside the transaction; a
	// failed delivery must not unwind the account.
	if err := srv.issueVerificationToken(ctx, newAccount, entity.TokenTypeEmailVerification, service.AccountEventEmailVerification); err != nil {
		srv.log(ctx).Error("Failed to issue verification token after signup",
			slog.String("accountId", newAccount.ID.String()), slog.Any("error", err))
	}

	srv.log(ctx).Info("Customer signed up", slog.String("accountId", newAccount.ID.String()))

	return &usecase.SignUpOutput{Account: newAccount}, nil
}

// SignIn authenticates an email/password pair and opens a session.
// A missing account, a password-less account and a wrong password all return
// the same credentials error.
func (srv *authService) SignIn(ctx context.Context, input usecase.SignInInput) (*usecase.AuthOutput, error) {
	email, err := entity.NewEmail(input.Email)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredentials
	}

	account, err := srv.accountRepo.FindByEmail(ctx, email.String())
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to load account for sign-in")
	}

	if !account.HasPassword() || !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Sign-in rejected", slog.String("email", email.String()))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.openSession(ctx, account, input.IPAddress, input.UserAgent)
}

// Refresh rotates the refresh token. Verification, the session expiry check,
// the old session's deletion and the new session's creation all happen before
// anything is returned; any failure yields the same invalid-token error so a
// caller cannot probe which step failed.
func (srv *authService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.AuthOutput, error) {
	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	sessionID, err := claims.SessionID()
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	var account *entity.Account
	var newSession *entity.Session

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()
		accountRepo := repoFactory.AccountRepo()

		// 1. The session row must still exist and be unexpired. This is the
		// database-side check backing up the JWT's own exp claim.
		oldSession, err := sessionRepo.FindActiveByID(ctx, sessionID)
		if err != nil {
			return err
		}

		// 2. Conditional delete. Of two concurrent refreshes of the same
		// token, exactly one delete reports an affected row; the loser
		// rolls back here.
		if err := sessionRepo.Delete(ctx, sessionID); err != nil {
			return err
		}

		account, err = accountRepo.FindByID(ctx, oldSession.AccountID)
		if err != nil {
			return err
		}

		// 3. The replacement session gets a full refresh lifetime and the
		// current client details.
		newSession = &entity.Session{
			AccountID: account.ID,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
		}

		return sessionRepo.Create(ctx, newSession)
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh token rotation failed",
			slog.String("sessionId", sessionID.String()), slog.Any("error", err))

		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	accessToken, refreshToken, err := srv.tokenService.GenerateAuthTokens(newSession.ID, account.ID, account.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign rotated tokens")
	}

	srv.log(ctx).Debug("Refresh token rotated",
		slog.String("oldSessionId", sessionID.String()),
		slog.String("newSessionId", newSession.ID.String()),
	)

	return &usecase.AuthOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      account,
	}, nil
}

// SignOut revokes the session behind the presented refresh token. Signing
// out an already-dead session succeeds; the caller's goal is met either way.
func (srv *authService) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := srv.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	sessionID, err := claims.SessionID()
	if err != nil {
		return nil
	}

	return srv.SignOutSession(ctx, sessionID)
}

// SignOutSession revokes a session directly by ID.
func (srv *authService) SignOutSession(ctx context.Context, sessionID uuid.UUID) error {
	err := srv.sessionRepo.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// GetAccount loads the authenticated account's profile.
func (srv *authService) GetAccount(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to load account")
	}

	return account, nil
}

// SignInWithGoogleIDToken authenticates a client-obtained Google ID token.
func (srv *authService) SignInWithGoogleIDToken(ctx context.Context, idToken, ipAddress, userAgent string) (*usecase.AuthOutput, error) {
	oauthUser, err := srv.googleIDToken.VerifyIDToken(ctx, idToken)
	if err != nil {
		srv.log(ctx).Warn("Google ID token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed
	}

	account, err := srv.resolveCustomerOAuthAccount(ctx, oauthUser)
	if err != nil {
		return nil, err
	}

	return srv.openSession(ctx, account, ipAddress, userAgent)
}

// GoogleAuthURL builds the provider consent URL for the requested variant.
func (srv *authService) GoogleAuthURL(ctx context.Context, admin bool) (string, error) {
	redirectURI := srv.cfg.GoogleOAuth.RedirectURI
	if admin {
		redirectURI = srv.cfg.GoogleOAuth.AdminRedirectURI
	}

	authURL, err := srv.googleCodeFlow.AuthorizationURL(ctx, redirectURI)
	if err != nil {
		return "", errors.Wrap(err, "failed to build authorization URL")
	}

	return authURL, nil
}

// GoogleCallbackCustomer completes the customer code flow. Unknown Google
// identities get a customer account created on the fly.
func (srv *authService) GoogleCallbackCustomer(ctx context.Context, input usecase.GoogleCallbackInput) (*usecase.AuthOutput, error) {
	oauthUser, err := srv.googleCodeFlow.Exchange(ctx, input.Code, input.State)
	if err != nil {
		srv.log(ctx).Warn("Google callback exchange failed", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed
	}

	account, err := srv.resolveCustomerOAuthAccount(ctx, oauthUser)
	if err != nil {
		return nil, err
	}

	return srv.openSession(ctx, account, input.IPAddress, input.UserAgent)
}

// GoogleCallbackAdmin completes the admin code flow. The Google identity must
// belong to an existing admin account; nothing is auto-created here.
func (srv *authService) GoogleCallbackAdmin(ctx context.Context, input usecase.GoogleCallbackInput) (*usecase.AuthOutput, error) {
	oauthUser, err := srv.googleCodeFlow.Exchange(ctx, input.Code, input.State)
	if err != nil {
		srv.log(ctx).Warn("Google admin callback exchange failed", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed
	}

	if oauthUser.Email == "" {
		return nil, domainerrors.ErrOAuthEmailMissing
	}

	account, err := srv.accountRepo.FindByProvider(ctx, oauthUser.Provider, oauthUser.ID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		// Fall back to the email: an admin provisioned without a linked
		// Google identity gets linked on first sign-in.
		account, err = srv.accountRepo.FindByEmail(ctx, oauthUser.Email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAdminAccountNotFound
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to load account for admin callback")
		}
		if account.Role != entity.RoleAdmin {
			return nil, domainerrors.ErrAdminAccountNotFound
		}

		account.Provider = oauthUser.Provider
		account.ProviderAccountID = oauthUser.ID
		account.EmailVerified = account.EmailVerified || oauthUser.EmailVerified
		if err := srv.accountRepo.Update(ctx, account); err != nil {
			return nil, errors.Wrap(err, "failed to link admin provider identity")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to load account for admin callback")
	}

	if account.Role != entity.RoleAdmin {
		return nil, domainerrors.ErrAdminAccountNotFound
	}

	return srv.openSession(ctx, account, input.IPAddress, input.UserAgent)
}

// RequestPasswordReset issues a reset token. The token value rides on the
// event pipeline, never on the API response.
func (srv *authService) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	email, err := entity.NewEmail(rawEmail)
	if err != nil {
		return domainerrors.ErrAccountNotFound
	}

	account, err := srv.accountRepo.FindByEmail(ctx, email.String())
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound
		}

		return errors.Wrap(err, "failed to load account for password reset")
	}

	return srv.issueVerificationToken(ctx, account, entity.TokenTypePasswordReset, service.AccountEventPasswordReset)
}

// ResetPassword redeems a reset token, replaces the password, and revokes
// every session of the account.
func (srv *authService) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	var accountID uuid.UUID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.VerificationTokenRepo()
		accountRepo := repoFactory.AccountRepo()
		sessionRepo := repoFactory.SessionRepo()

		// 1. The token must exist, be unexpired, and be of the right type.
		token, err := tokenRepo.FindByToken(ctx, input.Token, entity.TokenTypePasswordReset)
		if err != nil {
			return err
		}

		// 2. Single use: the conditional delete makes one of two concurrent
		// redemptions fail.
		if err := tokenRepo.Consume(ctx, token.ID); err != nil {
			return err
		}

		account, err := accountRepo.FindByID(ctx, token.AccountID)
		if err != nil {
			return err
		}

		account.PasswordHash = hashedPassword
		if err := accountRepo.Update(ctx, account); err != nil {
			return err
		}

		// 3. A password reset invalidates every open session.
		if err := sessionRepo.DeleteByAccountID(ctx, account.ID); err != nil {
			return err
		}

		accountID = account.ID

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("error", err))

		return domainerrors.ErrVerificationTokenInvalid
	}

	srv.publishEvent(ctx, &service.AccountEvent{
		EventType: service.AccountEventPasswordChanged,
		AccountID: accountID.String(),
	})

	srv.log(ctx).Info("Password reset completed", slog.String("accountId", accountID.String()))

	return nil
}

// RequestEmailVerification issues a fresh verification token for the account.
func (srv *authService) RequestEmailVerification(ctx context.Context, accountID uuid.UUID) error {
	account, err := srv.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if account.EmailVerified {
		return nil
	}

	return srv.issueVerificationToken(ctx, account, entity.TokenTypeEmailVerification, service.AccountEventEmailVerification)
}

// VerifyEmail redeems a verification token and marks the email verified.
func (srv *authService) VerifyEmail(ctx context.Context, tokenValue string) error {
	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.VerificationTokenRepo()
		accountRepo := repoFactory.AccountRepo()

		token, err := tokenRepo.FindByToken(ctx, tokenValue, entity.TokenTypeEmailVerification)
		if err != nil {
			return err
		}

		if err := tokenRepo.Consume(ctx, token.ID); err != nil {
			return err
		}

		account, err = accountRepo.FindByID(ctx, token.AccountID)
		if err != nil {
			return err
		}

		account.EmailVerified = true

		return accountRepo.Update(ctx, account)
	})
	if err != nil {
		srv.log(ctx).Warn("Email verification failed", slog.Any("error", err))

		return domainerrors.ErrVerificationTokenInvalid
	}

	srv.publishEvent(ctx, &service.AccountEvent{
		EventType: service.AccountEventEmailVerified,
		AccountID: account.ID.String(),
		Email:     account.Email,
	})

	return nil
}

// openSession creates a session for the account and signs a token pair.
func (srv *authService) openSession(ctx context.Context, account *entity.Account, ipAddress, userAgent string) (*usecase.AuthOutput, error) {
	session := &entity.Session{
		AccountID: account.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	accessToken, refreshToken, err := srv.tokenService.GenerateAuthTokens(session.ID, account.ID, account.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign tokens")
	}

	srv.log(ctx).Info("Session opened",
		slog.String("accountId", account.ID.String()),
		slog.String("sessionId", session.ID.String()),
	)

	return &usecase.AuthOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      account,
	}, nil
}

// resolveCustomerOAuthAccount maps a verified Google identity onto an
// account: by linked provider first, then by email (linking on the way), and
// finally by creating a fresh customer account.
func (srv *authService) resolveCustomerOAuthAccount(ctx context.Context, oauthUser *service.OAuthUser) (*entity.Account, error) {
	if oauthUser.Email == "" {
		return nil, domainerrors.ErrOAuthEmailMissing
	}

	var account *entity.Account

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		existing, err := accountRepo.FindByProvider(ctx, oauthUser.Provider, oauthUser.ID)
		if err == nil {
			account = existing

			return nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to look up provider identity")
		}

		// Same email, no linked identity: link rather than duplicate.
		existing, err = accountRepo.FindByEmail(ctx, oauthUser.Email)
		if err == nil {
			existing.Provider = oauthUser.Provider
			existing.ProviderAccountID = oauthUser.ID
			existing.EmailVerified = existing.EmailVerified || oauthUser.EmailVerified
			if err := accountRepo.Update(ctx, existing); err != nil {
				return errors.Wrap(err, "failed to link provider identity")
			}
			account = existing

			return nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to look up account by email")
		}

		// First sight of this identity: create a customer account. No local
		// password; the account authenticates through the provider.
		account = &entity.Account{
			Email:             oauthUser.Email,
			Role:              entity.RoleCustomer,
			Provider:          oauthUser.Provider,
			ProviderAccountID: oauthUser.ID,
			EmailVerified:     oauthUser.EmailVerified,
			CustomerProfile:   &entity.CustomerProfile{},
		}

		return accountRepo.Create(ctx, account)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to resolve OAuth account", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthFailed
	}

	return account, nil
}

// issueVerificationToken replaces the account's outstanding tokens of the
// given type with a fresh one and publishes the delivery event. The token
// value itself never appears in an API response.
func (srv *authService) issueVerificationToken(ctx context.Context, account *entity.Account, tokenType entity.TokenType, eventType string) error {
	value, err := generateTokenValue()
	if err != nil {
		return errors.Wrap(err, "failed to generate token value")
	}

	token := &entity.VerificationToken{
		Token:     value,
		Type:      tokenType,
		Value:     account.Email,
		AccountID: account.ID,
		ExpiresAt: time.Now().Add(srv.cfg.Auth.VerificationTokenTTL),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.VerificationTokenRepo()

		// A new token supersedes any outstanding ones of the same type.
		if err := tokenRepo.DeleteByAccountAndType(ctx, account.ID, tokenType); err != nil {
			return err
		}

		return tokenRepo.Create(ctx, token)
	})
	if err != nil {
		return errors.Wrap(err, "failed to store verification token")
	}

	srv.publishEvent(ctx, &service.AccountEvent{
		EventType: eventType,
		AccountID: account.ID.String(),
		Email:     account.Email,
		Token:     value,
	})

	return nil
}

// publishEvent sends an account event, logging rather than failing the
// operation when the pipeline is unavailable.
func (srv *authService) publishEvent(ctx context.Context, event *service.AccountEvent) {
	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)

	if err := srv.events.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish account event",
			slog.String("eventType", event.EventType), slog.Any("error", err))
	}
}

// generateTokenValue produces a 256-bit random opaque token.
func generateTokenValue() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}
