package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ShareLink is what issuance hands back to the caller: the opaque handle,
// the full URL a recipient opens, and the expiry for UI display.
type ShareLink struct {
	Token     string
	URL       string
	ExpiresIn int
	ExpiresAt time.Time
}

// Issuer mints share links: it signs a grant for the gallery, allocates a
// collision-free opaque handle for it, and registers the handle in the
// store. The caller is responsible for having already established that the
// requester owns the gallery.
type Issuer struct {
	codec        *Codec
	store        HandleStore
	baseURL      string
	handleLength int
}

func NewIssuer(codec *Codec, store HandleStore, baseURL string, handleLength int) *Issuer {
	if handleLength <= 0 {
		handleLength = 8
	}
	return &Issuer{
		codec:        codec,
		store:        store,
		baseURL:      baseURL,
		handleLength: handleLength,
	}
}

func (i *Issuer) Issue(galleryID string, gallerySlug string) (ShareLink, error) {
	signed, grant, err := i.codec.Encode(galleryID, gallerySlug)
	if err != nil {
		return ShareLink{}, err
	}

	var handle string
	for {
		handle, err = i.generateHandle()
		if err != nil {
			return ShareLink{}, err
		}
		// Collisions are astronomically unlikely at this length, but the
		// retry is required for correctness: Add is atomic, so losing the
		// race just means another spin.
		if err = i.store.Add(handle, signed, grant.ExpiresAt); err == nil {
			break
		}
	}

	log.Debug().Str("gallery", gallerySlug).Str("token", handle).Msg("Issued share link")

	return ShareLink{
		Token:     handle,
		URL:       fmt.Sprintf("%s/galleries/%s?token=%s", i.baseURL, gallerySlug, handle),
		ExpiresIn: int(i.codec.Lifetime().Seconds()),
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// generateHandle draws random bytes and keeps the first handleLength
// characters of their unpadded base64url form.
func (i *Issuer) generateHandle() (string, error) {
	buf := make([]byte, i.handleLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(buf)
	return s[:i.handleLength], nil
}
