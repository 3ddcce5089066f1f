package qrcode

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateShareQR(t *testing.T) {
	service := NewQRCodeService(256, "M")
	mediaID := uuid.New()

	qrBytes, err := service.GenerateShareQR(mediaID)
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_ParseShareQR(t *testing.T) {
	service := NewQRCodeService(256, "M")
	mediaID := uuid.New()

	payload, err := json.Marshal(QRCodeData{
		MediaID: mediaID.String(),
		Type:    "media_share",
	})
	require.NoError(t, err)

	parsed, err := service.ParseShareQR(string(payload))
	require.NoError(t, err)
	assert.Equal(t, mediaID, parsed)
}

func TestQRCodeService_ParseShareQR_InvalidPayloads(t *testing.T) {
	service := NewQRCodeService(256, "M")

	// Not JSON at all
	_, err := service.ParseShareQR("not json")
	assert.Error(t, err)

	// Wrong type field
	payload, _ := json.Marshal(QRCodeData{MediaID: uuid.NewString(), Type: "subscription"})
	_, err = service.ParseShareQR(string(payload))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid QR code type")

	// Malformed UUID
	payload, _ = json.Marshal(QRCodeData{MediaID: "not-a-uuid", Type: "media_share"})
	_, err = service.ParseShareQR(string(payload))
	assert.Error(t, err)
}

func TestQRCodeService_RoundTrip(t *testing.T) {
	service := NewQRCodeService(256, "M")
	mediaID := uuid.New()

	qrBytes, err := service.GenerateShareQR(mediaID)
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// The encoded payload parses back to the same ID.
	payload, err := json.Marshal(QRCodeData{MediaID: mediaID.String(), Type: "media_share"})
	require.NoError(t, err)

	parsed, err := service.ParseShareQR(string(payload))
	require.NoError(t, err)
	assert.Equal(t, mediaID, parsed)
}
