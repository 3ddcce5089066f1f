package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"harbor/config"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/usecase"
	"harbor/internal/util"
)

// MediaHandler holds dependencies for media handlers.
type MediaHandler struct {
	uc     usecase.MediaUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewMediaHandler is the constructor for MediaHandler, injected by Fx.
func NewMediaHandler(uc usecase.MediaUsecase, cfg *config.Config, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{uc: uc, cfg: cfg, logger: logger}
}

type mediaResponse struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type mediaListResponse struct {
	Items []mediaResponse     `json:"items"`
	Meta  util.PaginationMeta `json:"meta"`
}

type mediaShareResponse struct {
	URL string `json:"url"`
}

// Upload stores a multipart file upload for the caller.
func (h *MediaHandler) Upload(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "A file upload is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer file.Close()

	media, err := h.uc.Upload(c.Request().Context(), usecase.UploadMediaInput{
		OwnerID:  accountID,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:     fileHeader.Size,
		Body:     file,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newMediaResponse(media), "Media uploaded successfully")
}

// List pages through the caller's media.
func (h *MediaHandler) List(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.List(c.Request().Context(), usecase.ListMediaInput{
		OwnerID: accountID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]mediaResponse, 0, len(output.Items))
	for _, media := range output.Items {
		items = append(items, newMediaResponse(media))
	}

	return response.Success(c, http.StatusOK, mediaListResponse{
		Items: items,
		Meta:  output.Meta,
	}, "Media retrieved successfully")
}

// Download streams the media bytes with the stored content type.
func (h *MediaHandler) Download(c echo.Context) error {
	requesterID, role, mediaID, err := h.requestIdentity(c)
	if err != nil {
		return err
	}

	output, err := h.uc.Download(c.Request().Context(), requesterID, role, mediaID)
	if err != nil {
		return errors.WithStack(err)
	}
	defer output.Body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+output.Media.FileName+`"`)

	return c.Stream(http.StatusOK, output.Media.MimeType, output.Body)
}

// Share returns a share link for the media, or the link rendered as a QR
// code PNG when format=qr is requested.
func (h *MediaHandler) Share(c echo.Context) error {
	requesterID, role, mediaID, err := h.requestIdentity(c)
	if err != nil {
		return err
	}

	if c.QueryParam("format") == "qr" {
		png, err := h.uc.ShareQR(c.Request().Context(), requesterID, role, mediaID)
		if err != nil {
			return errors.WithStack(err)
		}

		return c.Blob(http.StatusOK, "image/png", png)
	}

	// The metadata lookup doubles as the access check.
	output, err := h.uc.Download(c.Request().Context(), requesterID, role, mediaID)
	if err != nil {
		return errors.WithStack(err)
	}
	output.Body.Close()

	return response.Success(c, http.StatusOK, mediaShareResponse{
		URL: h.cfg.Storage.PublicBaseURL + "/media/" + mediaID.String(),
	}, "Share link generated successfully")
}

// Delete removes a media record and its stored bytes.
func (h *MediaHandler) Delete(c echo.Context) error {
	requesterID, role, mediaID, err := h.requestIdentity(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), requesterID, role, mediaID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Media deleted successfully")
}

func (h *MediaHandler) requestIdentity(c echo.Context) (uuid.UUID, entity.Role, uuid.UUID, error) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return uuid.Nil, "", uuid.Nil, domainerrors.ErrUnauthenticated
	}
	role, _ := middleware.GetRole(c)

	// An unparseable ID is indistinguishable from a missing record.
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, "", uuid.Nil, domainerrors.ErrMediaNotFound
	}

	return accountID, role, mediaID, nil
}

// --- Mapper Functions ---

func newMediaResponse(media *entity.Media) mediaResponse {
	return mediaResponse{
		ID:        media.ID,
		FileName:  media.FileName,
		MimeType:  media.MimeType,
		Size:      media.Size,
		CreatedAt: media.CreatedAt,
	}
}
