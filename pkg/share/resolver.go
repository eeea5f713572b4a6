package share

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Resolver turns an inbound token string back into a verified Grant. Two
// strategies are tried in order: the token as an opaque handle in the
// store, then the token as a raw signed grant (older links carried the
// signed form directly). Policy checks apply identically to both paths.
type Resolver struct {
	codec *Codec
	store HandleStore
}

func NewResolver(codec *Codec, store HandleStore) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// resolveFunc attempts one resolution strategy. The bool reports whether
// the strategy applied at all; a false means fall through to the next one.
type resolveFunc func(token string) (Grant, bool, error)

// Resolve validates a token and returns its grant. Errors are one of
// ErrNotFound, ErrExpired, ErrInvalidSignature, ErrMalformed or
// ErrWrongPurpose.
func (r *Resolver) Resolve(token string) (Grant, error) {
	chain := []resolveFunc{r.fromStore, r.direct}

	var (
		grant Grant
		err   error
	)
	resolved := false
	for _, f := range chain {
		var applicable bool
		grant, applicable, err = f(token)
		if applicable {
			resolved = true
			break
		}
	}
	if !resolved {
		return Grant{}, ErrNotFound
	}
	if err != nil {
		return Grant{}, err
	}

	if grant.Purpose != PurposeGalleryShare {
		log.Warn().Str("purpose", grant.Purpose).Msg("Share token has wrong purpose")
		return Grant{}, ErrWrongPurpose
	}
	if !time.Now().Before(grant.ExpiresAt) {
		return Grant{}, ErrExpired
	}

	return grant, nil
}

// ResolveGallery validates a token and additionally requires that the
// grant is bound to the gallery being requested. A token that resolves but
// points at a different gallery must not grant access to this one.
func (r *Resolver) ResolveGallery(token string, gallerySlug string) (Grant, error) {
	grant, err := r.Resolve(token)
	if err != nil {
		return Grant{}, err
	}
	if grant.Slug != gallerySlug {
		return Grant{}, WrongGalleryError{Expected: grant.Slug}
	}
	return grant, nil
}

func (r *Resolver) fromStore(token string) (Grant, bool, error) {
	signed, _, ok := r.store.Get(token)
	if !ok {
		return Grant{}, false, nil
	}

	grant, err := r.codec.Decode(signed)
	if err != nil {
		// A stored grant that no longer verifies is corrupt; drop the
		// handle rather than let it linger.
		r.store.Delete(token)
		log.Error().Err(err).Str("token", token).Msg("Stored share grant failed to decode")
		return Grant{}, true, ErrInvalidSignature
	}
	return grant, true, nil
}

func (r *Resolver) direct(token string) (Grant, bool, error) {
	grant, err := r.codec.Decode(token)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return Grant{}, true, ErrInvalidSignature
		}
		// Not a signed grant at all; no strategy matched.
		return Grant{}, false, nil
	}
	return grant, true, nil
}
