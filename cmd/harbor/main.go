package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"harbor/config"
	"harbor/internal/delivery"
	"harbor/internal/delivery/http"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/router/handler"
	"harbor/internal/domain/service"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/auth/google"
	"harbor/internal/infra/cache"
	"harbor/internal/infra/jobs"
	logs "harbor/internal/infra/log"
	"harbor/internal/infra/persistence/postgres"
	"harbor/internal/infra/pubsub"
	"harbor/internal/infra/qrcode"
	"harbor/internal/infra/storage"
	"harbor/internal/usecase/impl"

	"github.com/redis/go-redis/v9"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
			jobs.New,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		cache.New,
		storage.New,
		pubsub.NewEventPublisher,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewAccountRepository,
			postgres.NewSessionRepository,
			postgres.NewVerificationTokenRepository,
			postgres.NewMediaRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			google.NewAuthService,
			google.NewOAuthService,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewSessionService,
			impl.NewMediaService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			newCacheMiddleware,
		),
	)
}

// newCacheMiddleware wires the response cache to the shared redis client.
func newCacheMiddleware(client *redis.Client, cfg *config.Config, logger *slog.Logger) *middleware.CacheMiddleware {
	return middleware.NewCacheMiddleware(client, cfg.Redis.CacheTTL, logger)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAccountHandler,
			handler.NewSessionHandler,
			handler.NewMediaHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
