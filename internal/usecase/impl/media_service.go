package impl

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/usecase"
	"harbor/internal/util"
)

// maxUploadSize caps a single media upload at 25 MiB.
const maxUploadSize = 25 << 20

// mediaService implements the MediaUsecase interface.
type mediaService struct {
	mediaRepo repository.MediaRepository
	storage   service.ObjectStorage
	qrcode    service.QRCodeService
	logger    *slog.Logger
}

// MediaServiceParams holds dependencies for mediaService, injected by Fx.
type MediaServiceParams struct {
	fx.In

	MediaRepo repository.MediaRepository
	Storage   service.ObjectStorage
	QRCode    service.QRCodeService
	Logger    *slog.Logger
}

// NewMediaService is the constructor for mediaService.
func NewMediaService(params MediaServiceParams) usecase.MediaUsecase {
	return &mediaService{
		mediaRepo: params.MediaRepo,
		storage:   params.Storage,
		qrcode:    params.QRCode,
		logger:    params.Logger,
	}
}

func (srv *mediaService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Upload stores the bytes first, then the metadata row. If the row insert
// fails the written blob is removed so no key leaks without a record.
func (srv *mediaService) Upload(ctx context.Context, input usecase.UploadMediaInput) (*entity.Media, error) {
	if input.FileName == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("a file name is required")
	}
	if input.Size <= 0 || input.Size > maxUploadSize {
		return nil, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("file size must be between 1 byte and %d bytes", maxUploadSize))
	}

	mediaID := uuid.New()
	storageKey := buildStorageKey(mediaID, input.FileName)

	if err := srv.storage.Upload(ctx, storageKey, input.MimeType, input.Body); err != nil {
		srv.log(ctx).Error("Failed to write media blob", slog.String("key", storageKey), slog.Any("error", err))

		return nil, domainerrors.ErrMediaUploadFailed
	}

	ownerID := input.OwnerID
	media := &entity.Media{
		ID:         mediaID,
		FileName:   input.FileName,
		StorageKey: storageKey,
		MimeType:   input.MimeType,
		Size:       input.Size,
		OwnerID:    &ownerID,
	}

	if err := srv.mediaRepo.Create(ctx, media); err != nil {
		if delErr := srv.storage.Delete(ctx, storageKey); delErr != nil {
			srv.log(ctx).Error("Failed to remove blob after insert failure",
				slog.String("key", storageKey), slog.Any("error", delErr))
		}

		return nil, errors.Wrap(err, "failed to create media record")
	}

	srv.log(ctx).Info("Media uploaded",
		slog.String("mediaId", media.ID.String()),
		slog.String("ownerId", ownerID.String()),
		slog.Int64("size", media.Size),
	)

	return media, nil
}

// List pages through the caller's own media, newest first.
func (srv *mediaService) List(ctx context.Context, input usecase.ListMediaInput) (*usecase.ListMediaOutput, error) {
	pagination := util.GetPaginationParams(input.Page, input.Limit)

	items, total, err := srv.mediaRepo.ListByOwner(ctx, input.OwnerID, pagination.Limit, pagination.Offset())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list media")
	}

	return &usecase.ListMediaOutput{
		Items: items,
		Meta:  util.CalculateMeta(total, pagination.Page, pagination.Limit),
	}, nil
}

// Download streams a media object. Records owned by somebody else read as
// absent so IDs cannot be probed.
func (srv *mediaService) Download(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) (*usecase.DownloadMediaOutput, error) {
	media, err := srv.loadVisible(ctx, requesterID, role, mediaID)
	if err != nil {
		return nil, err
	}

	body, err := srv.storage.Download(ctx, media.StorageKey)
	if err != nil {
		srv.log(ctx).Error("Failed to open media blob",
			slog.String("mediaId", mediaID.String()), slog.Any("error", err))

		return nil, domainerrors.ErrMediaNotFound
	}

	return &usecase.DownloadMediaOutput{Media: media, Body: body}, nil
}

// Delete removes the record and its blob. Only the owner or an admin may
// delete; a non-owner gets a forbidden error, not a silent miss.
func (srv *mediaService) Delete(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) error {
	media, err := srv.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return domainerrors.ErrMediaNotFound
		}

		return errors.Wrap(err, "failed to load media")
	}

	if !canAccessMedia(media, requesterID, role) {
		return domainerrors.ErrForbidden
	}

	// Row first: once the row is gone the blob can never be reached again,
	// and a leftover blob is cleaned up like any other storage stray.
	if err := srv.mediaRepo.Delete(ctx, mediaID); err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return domainerrors.ErrMediaNotFound
		}

		return errors.Wrap(err, "failed to delete media record")
	}

	if err := srv.storage.Delete(ctx, media.StorageKey); err != nil {
		srv.log(ctx).Error("Failed to delete media blob",
			slog.String("key", media.StorageKey), slog.Any("error", err))
	}

	srv.log(ctx).Info("Media deleted", slog.String("mediaId", mediaID.String()))

	return nil
}

// ShareQR renders a QR code PNG encoding the media's share payload.
func (srv *mediaService) ShareQR(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) ([]byte, error) {
	media, err := srv.loadVisible(ctx, requesterID, role, mediaID)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrcode.GenerateShareQR(media.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render share QR code")
	}

	return png, nil
}

// loadVisible fetches the media and applies the read-side access rule:
// inaccessible records are indistinguishable from missing ones.
func (srv *mediaService) loadVisible(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) (*entity.Media, error) {
	media, err := srv.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return nil, domainerrors.ErrMediaNotFound
		}

		return nil, errors.Wrap(err, "failed to load media")
	}

	if !canAccessMedia(media, requesterID, role) {
		return nil, domainerrors.ErrMediaNotFound
	}

	return media, nil
}

// canAccessMedia allows the owner and any admin.
func canAccessMedia(media *entity.Media, requesterID uuid.UUID, role entity.Role) bool {
	if role == entity.RoleAdmin {
		return true
	}

	return media.OwnerID != nil && *media.OwnerID == requesterID
}

// buildStorageKey derives the blob key from the media ID, keeping the
// original extension so stored objects stay recognizable.
func buildStorageKey(mediaID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))

	return "media/" + mediaID.String() + ext
}
