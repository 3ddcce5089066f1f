package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"harbor/config"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:           12,
			VerificationTokenTTL: time.Hour,
		},
		GoogleOAuth: &config.GoogleOAuthConfig{
			RedirectURI:      "https://harbor.test/auth/google/callback",
			AdminRedirectURI: "https://harbor.test/auth/google/admin/callback",
		},
	}
}

// stubRepoFactory hands the test's repository mocks to transactional code.
type stubRepoFactory struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	tokens   repository.VerificationTokenRepository
	media    repository.MediaRepository
}

func (f *stubRepoFactory) AccountRepo() repository.AccountRepository { return f.accounts }
func (f *stubRepoFactory) SessionRepo() repository.SessionRepository { return f.sessions }
func (f *stubRepoFactory) VerificationTokenRepo() repository.VerificationTokenRepository {
	return f.tokens
}
func (f *stubRepoFactory) MediaRepo() repository.MediaRepository { return f.media }

// stubTxManager runs the transactional function against the stub factory,
// mirroring commit-on-nil and rollback-on-error semantics.
type stubTxManager struct {
	factory *stubRepoFactory
}

func (m *stubTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *mockAccountRepo) FindByProvider(ctx context.Context, provider entity.ProviderType, providerAccountID string) (*entity.Account, error) {
	args := m.Called(ctx, provider, providerAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *entity.Account) error {
	return m.Called(ctx, account).Error(0)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *mockSessionRepo) FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Session), args.Error(1)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepo) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	return m.Called(ctx, accountID).Error(0)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *entity.VerificationToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, token string, tokenType entity.TokenType) (*entity.VerificationToken, error) {
	args := m.Called(ctx, token, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationToken), args.Error(1)
}

func (m *mockTokenRepo) Consume(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTokenRepo) DeleteByAccountAndType(ctx context.Context, accountID uuid.UUID, tokenType entity.TokenType) error {
	return m.Called(ctx, accountID, tokenType).Error(0)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockMediaRepo struct{ mock.Mock }

func (m *mockMediaRepo) Create(ctx context.Context, media *entity.Media) error {
	return m.Called(ctx, media).Error(0)
}

func (m *mockMediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Media), args.Error(1)
}

func (m *mockMediaRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Media, int64, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entity.Media), args.Get(1).(int64), args.Error(2)
}

func (m *mockMediaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMediaRepo) FindOrphans(ctx context.Context, olderThan time.Time) ([]*entity.Media, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Media), args.Error(1)
}

func (m *mockMediaRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *mockHasher) ValidateStrength(password string) error {
	return m.Called(password).Error(0)
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) GenerateAuthTokens(sessionID, accountID uuid.UUID, role entity.Role) (string, string, error) {
	args := m.Called(sessionID, accountID, role)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *mockTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *mockTokenService) GetAccessTokenDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *mockTokenService) GetRefreshTokenDuration() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

type mockIDTokenVerifier struct{ mock.Mock }

func (m *mockIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*service.OAuthUser, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OAuthUser), args.Error(1)
}

func (m *mockIDTokenVerifier) GetProvider() entity.ProviderType {
	return m.Called().Get(0).(entity.ProviderType)
}

type mockCodeFlow struct{ mock.Mock }

func (m *mockCodeFlow) AuthorizationURL(ctx context.Context, redirectURI string) (string, error) {
	args := m.Called(ctx, redirectURI)
	return args.String(0), args.Error(1)
}

func (m *mockCodeFlow) Exchange(ctx context.Context, code, state string) (*service.OAuthUser, error) {
	args := m.Called(ctx, code, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OAuthUser), args.Error(1)
}

func (m *mockCodeFlow) GetProvider() entity.ProviderType {
	return m.Called().Get(0).(entity.ProviderType)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	return m.Called(ctx, key, contentType, body).Error(0)
}

func (m *mockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) Close() error {
	return m.Called().Error(0)
}

type mockQRCode struct{ mock.Mock }

func (m *mockQRCode) GenerateShareQR(mediaID uuid.UUID) ([]byte, error) {
	args := m.Called(mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockQRCode) ParseShareQR(qrData string) (uuid.UUID, error) {
	args := m.Called(qrData)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
