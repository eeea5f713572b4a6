package content

import (
	"context"
	"errors"
	"time"
)

var ErrGalleryNotFound = errors.New("gallery not found")

type Photo struct {
	ID        string
	URL       string
	Caption   string
	CreatedAt time.Time
}

type Gallery struct {
	ID          string
	Slug        string
	Title       string
	Description string
	CoverURL    string
	Published   bool
	Photos      []Photo
}

// Store is the content system the rest of the application reads galleries
// from. The production deployment fronts a CMS; the bundled implementation
// is a sqlite-backed store seeded from configuration.
type Store interface {
	List(ctx context.Context) ([]Gallery, error)
	BySlug(ctx context.Context, slug string) (Gallery, error)
}
