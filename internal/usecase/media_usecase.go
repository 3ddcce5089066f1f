// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	"harbor/internal/domain/entity"
	"harbor/internal/util"
)

// UploadMediaInput defines the data required to store an uploaded file.
type UploadMediaInput struct {
	OwnerID  uuid.UUID
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

// ListMediaInput carries the paging parameters for a media listing.
type ListMediaInput struct {
	OwnerID uuid.UUID
	Page    int
	Limit   int
}

// ListMediaOutput returns one page of media records with paging metadata.
type ListMediaOutput struct {
	Items []*entity.Media
	Meta  util.PaginationMeta
}

// DownloadMediaOutput returns the media record together with an open reader
// over its bytes. The caller closes the reader.
type DownloadMediaOutput struct {
	Media *entity.Media
	Body  io.ReadCloser
}

// MediaUsecase defines the interface for media business operations. Access
// is restricted to the owner, except for admins, who can reach any record.
type MediaUsecase interface {
	// Upload stores the file bytes and creates the media record.
	Upload(ctx context.Context, input UploadMediaInput) (*entity.Media, error)

	// List pages through the caller's media, newest first.
	List(ctx context.Context, input ListMediaInput) (*ListMediaOutput, error)

	// Download streams a media object the caller is allowed to see.
	Download(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) (*DownloadMediaOutput, error)

	// Delete removes the record and its blob.
	Delete(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) error

	// ShareQR renders a QR code PNG encoding the media's share link.
	ShareQR(ctx context.Context, requesterID uuid.UUID, role entity.Role, mediaID uuid.UUID) ([]byte, error)
}
