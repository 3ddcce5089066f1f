package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateShareQR generates a QR code image encoding a media share link
	GenerateShareQR(mediaID uuid.UUID) ([]byte, error)

	// ParseShareQR parses QR code payload data and returns the media ID
	ParseShareQR(qrData string) (uuid.UUID, error)
}
