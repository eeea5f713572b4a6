package share

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a token is not structurally a signed
	// grant at all.
	ErrMalformed = errors.New("share token is malformed")

	// ErrInvalidSignature is returned when a grant's signature does not
	// verify against the configured signing secret.
	ErrInvalidSignature = errors.New("share token signature is invalid")

	// ErrExpired is returned when a grant verified correctly but its
	// expiry has passed.
	ErrExpired = errors.New("share token has expired")

	// ErrWrongPurpose is returned when a verified claim is not a
	// gallery-share grant.
	ErrWrongPurpose = errors.New("token is not a gallery share token")

	// ErrNotFound is returned when a handle was never issued or has
	// already been swept from the store.
	ErrNotFound = errors.New("share token not found")

	// ErrHandleExists is returned by a handle store when the value is
	// already taken by a live entry.
	ErrHandleExists = errors.New("handle already exists")
)

// WrongGalleryError is returned when a grant resolved successfully but is
// bound to a different gallery than the one being requested.
type WrongGalleryError struct {
	Expected string
}

func (e WrongGalleryError) Error() string {
	return fmt.Sprintf("share token is for a different gallery, expected %q", e.Expected)
}
