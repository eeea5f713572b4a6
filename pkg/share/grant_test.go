package share

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("", time.Hour)
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	signed, grant, err := codec.Encode("gal-123", "summer-wedding")
	require.NoError(t, err)
	assert.Equal(t, "gal-123", grant.GalleryID)
	assert.Equal(t, "summer-wedding", grant.Slug)
	assert.Equal(t, PurposeGalleryShare, grant.Purpose)
	assert.WithinDuration(t, time.Now().Add(time.Hour), grant.ExpiresAt, 5*time.Second)

	decoded, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, grant.GalleryID, decoded.GalleryID)
	assert.Equal(t, grant.Slug, decoded.Slug)
	assert.Equal(t, grant.Purpose, decoded.Purpose)
	assert.Equal(t, grant.ExpiresAt.Unix(), decoded.ExpiresAt.Unix())
}

func TestCodecRejectsTamperedSignature(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	signed, _, err := codec.Encode("gal-123", "summer-wedding")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodecRejectsWrongKey(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewCodec("other-secret", time.Hour)
	require.NoError(t, err)

	signed, _, err := codec.Encode("gal-123", "summer-wedding")
	require.NoError(t, err)

	_, err = other.Decode(signed)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeDoesNotCheckExpiry(t *testing.T) {
	// Expiry is resolution-time policy; the codec must hand back even an
	// expired grant so the resolver can classify the failure itself.
	codec, err := NewCodec("test-secret", time.Nanosecond)
	require.NoError(t, err)

	signed, _, err := codec.Encode("gal-123", "summer-wedding")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	decoded, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.True(t, decoded.ExpiresAt.Before(time.Now()))
}
