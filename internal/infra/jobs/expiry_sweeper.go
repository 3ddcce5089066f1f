// Package jobs holds the background maintenance tasks that run alongside the
// HTTP server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"harbor/config"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
)

// ExpirySweeper periodically removes lapsed sessions, lapsed verification
// tokens, and ownerless media past the grace period together with their blobs.
type ExpirySweeper struct {
	sessions  repository.SessionRepository
	tokens    repository.VerificationTokenRepository
	media     repository.MediaRepository
	storage   service.ObjectStorage
	logger    *slog.Logger
	interval  time.Duration
	orphanAge time.Duration
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config           *config.Config
	Logger           *slog.Logger
	SessionRepo      repository.SessionRepository
	VerificationRepo repository.VerificationTokenRepository
	MediaRepo        repository.MediaRepository
	Storage          service.ObjectStorage
}

// New builds the sweeper and registers its start/stop hooks.
func New(params Params) *ExpirySweeper {
	sweeper := &ExpirySweeper{
		sessions:  params.SessionRepo,
		tokens:    params.VerificationRepo,
		media:     params.MediaRepo,
		storage:   params.Storage,
		logger:    params.Logger,
		interval:  params.Config.Jobs.SweepInterval,
		orphanAge: params.Config.Jobs.MediaOrphanAge,
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.run(loopCtx)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})

	return sweeper
}

// run loops until the context is cancelled. The first sweep happens one full
// interval after startup, not immediately, so a crash-looping process does
// not hammer the database.
func (s *ExpirySweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Expiry sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("mediaOrphanAge", s.orphanAge),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopped")

			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Each stage logs and continues on failure so that one
// broken stage cannot starve the others.
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	start := time.Now()

	sessionCount, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to sweep expired sessions", slog.Any("error", err))
	}

	tokenCount, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to sweep expired verification tokens", slog.Any("error", err))
	}

	mediaCount := s.sweepOrphanMedia(ctx)

	s.logger.Info("Expiry sweep completed",
		slog.Int64("expiredSessions", sessionCount),
		slog.Int64("expiredTokens", tokenCount),
		slog.Int64("orphanMedia", mediaCount),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// sweepOrphanMedia deletes ownerless media past the grace period. Blobs go
// first; a row whose blob deletion failed stays for the next pass instead of
// leaving an unreachable object behind.
func (s *ExpirySweeper) sweepOrphanMedia(ctx context.Context) int64 {
	cutoff := time.Now().Add(-s.orphanAge)

	orphans, err := s.media.FindOrphans(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list orphan media", slog.Any("error", err))

		return 0
	}
	if len(orphans) == 0 {
		return 0
	}

	deletable := make([]uuid.UUID, 0, len(orphans))
	for _, m := range orphans {
		if err := s.storage.Delete(ctx, m.StorageKey); err != nil {
			s.logger.Error("Failed to delete orphan blob",
				slog.String("mediaId", m.ID.String()),
				slog.String("storageKey", m.StorageKey),
				slog.Any("error", err),
			)

			continue
		}
		deletable = append(deletable, m.ID)
	}

	count, err := s.media.DeleteByIDs(ctx, deletable)
	if err != nil {
		s.logger.Error("Failed to delete orphan media records", slog.Any("error", err))

		return 0
	}

	return count
}
