package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gosimple "github.com/gosimple/slug"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/framefolio/framefolio/pkg/config"
	"github.com/framefolio/framefolio/pkg/content"
)

type galleryRow struct {
	gorm.Model
	UUID        string `gorm:"index:idx_gallery_uuid,unique"`
	Slug        string `gorm:"index:idx_gallery_slug,unique"`
	Title       string
	Description string
	CoverURL    string
	Published   bool
	Photos      []photoRow `gorm:"foreignKey:GalleryRowID;constraint:OnDelete:CASCADE"`
}

type photoRow struct {
	gorm.Model
	GalleryRowID uint
	UUID         string `gorm:"index:idx_photo_uuid,unique"`
	URL          string
	Caption      string
}

type Store struct {
	db *gorm.DB
}

func NewStore(conf config.Database) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch conf.Type {
	case "sqlite", "":
		db, err = gorm.Open(sqlite.Open(conf.DSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown database type: %s", conf.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&galleryRow{}, &photoRow{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Seed populates the store from static configuration. Galleries that
// already exist (matched by slug) are left alone so restarts are cheap.
func (s *Store) Seed(galleries []config.Gallery) error {
	for _, g := range galleries {
		galSlug := g.Slug
		if galSlug == "" {
			galSlug = gosimple.Make(g.Title)
		}

		var count int64
		s.db.Model(&galleryRow{}).Where("slug = ?", galSlug).Count(&count)
		if count > 0 {
			continue
		}

		row := galleryRow{
			UUID:        uuid.New().String(),
			Slug:        galSlug,
			Title:       g.Title,
			Description: g.Description,
			CoverURL:    g.CoverURL,
			Published:   true,
		}
		for _, p := range g.Photos {
			row.Photos = append(row.Photos, photoRow{
				UUID: uuid.New().String(),
				URL:  p,
			})
		}

		if res := s.db.Create(&row); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]content.Gallery, error) {
	var rows []galleryRow
	res := s.db.WithContext(ctx).Where("published = ?", true).Order("created_at desc").Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}

	rc := make([]content.Gallery, 0, len(rows))
	for _, row := range rows {
		rc = append(rc, toGallery(row))
	}
	return rc, nil
}

func (s *Store) BySlug(ctx context.Context, galSlug string) (content.Gallery, error) {
	var row galleryRow
	res := s.db.WithContext(ctx).Preload("Photos").First(&row, "slug = ?", galSlug)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return content.Gallery{}, content.ErrGalleryNotFound
		}
		return content.Gallery{}, res.Error
	}
	return toGallery(row), nil
}

func toGallery(row galleryRow) content.Gallery {
	rc := content.Gallery{
		ID:          row.UUID,
		Slug:        row.Slug,
		Title:       row.Title,
		Description: row.Description,
		CoverURL:    row.CoverURL,
		Published:   row.Published,
	}
	for _, p := range row.Photos {
		rc.Photos = append(rc.Photos, content.Photo{
			ID:        p.UUID,
			URL:       p.URL,
			Caption:   p.Caption,
			CreatedAt: p.CreatedAt.Truncate(time.Second),
		})
	}
	return rc
}
