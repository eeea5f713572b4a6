package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framefolio/framefolio/pkg/config"
	"github.com/framefolio/framefolio/pkg/content"
	"github.com/framefolio/framefolio/pkg/share"
)

// stubGalleries is an in-memory content.Store for handler tests.
type stubGalleries struct {
	galleries []content.Gallery
}

func (s *stubGalleries) List(ctx context.Context) ([]content.Gallery, error) {
	return s.galleries, nil
}

func (s *stubGalleries) BySlug(ctx context.Context, slug string) (content.Gallery, error) {
	for _, g := range s.galleries {
		if g.Slug == slug {
			return g, nil
		}
	}
	return content.Gallery{}, content.ErrGalleryNotFound
}

func newTestAPI(t *testing.T) *FramefolioAPI {
	t.Helper()

	codec, err := share.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)
	store := share.NewMemoryHandleStore(time.Hour, time.Hour)

	galleries := &stubGalleries{galleries: []content.Gallery{
		{
			ID:    "gal-123",
			Slug:  "summer-wedding",
			Title: "Summer Wedding",
			Photos: []content.Photo{
				{ID: "p1", URL: "https://img.example/1.jpg"},
			},
		},
	}}

	c := config.FramefolioConfig{
		Share: config.Share{BaseURL: "http://localhost:3000", LifetimeSeconds: 3600},
	}
	return NewFramefolioAPI(
		c,
		share.NewIssuer(codec, store, c.Share.BaseURL, 8),
		share.NewResolver(codec, store),
		galleries,
		nil,
	)
}

func TestCreateShareLink(t *testing.T) {
	a := newTestAPI(t)

	body := bytes.NewBufferString(`{"galleryId":"gal-123","slug":"summer-wedding"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/galleries/share", body)
	rec := httptest.NewRecorder()
	a.CreateShareLink(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token     string `json:"token"`
		ShareURL  string `json:"shareUrl"`
		ExpiresIn int    `json:"expiresIn"`
		ExpiresAt string `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Len(t, resp.Token, 8)
	assert.Equal(t, "http://localhost:3000/galleries/summer-wedding?token="+resp.Token, resp.ShareURL)
	assert.Equal(t, 3600, resp.ExpiresIn)

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func TestCreateShareLinkRejectsMissingFields(t *testing.T) {
	a := newTestAPI(t)

	for _, body := range []string{
		`{"slug":"summer-wedding"}`,
		`{"galleryId":"gal-123"}`,
		`{}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/galleries/share", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		a.CreateShareLink(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestValidateShareTokenRoundTrip(t *testing.T) {
	a := newTestAPI(t)

	link, err := a.issuer.Issue("gal-123", "summer-wedding")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/galleries/validate-token?token="+link.Token, nil)
	rec := httptest.NewRecorder()
	a.ValidateShareToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid     bool   `json:"valid"`
		GalleryID string `json:"galleryId"`
		Slug      string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "gal-123", resp.GalleryID)
	assert.Equal(t, "summer-wedding", resp.Slug)
}

func TestValidateShareTokenMissing(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/galleries/validate-token", nil)
	rec := httptest.NewRecorder()
	a.ValidateShareToken(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateShareTokenCollapsesFailureKinds(t *testing.T) {
	a := newTestAPI(t)

	// An unissued handle and a forged grant must be indistinguishable to
	// the caller.
	forgedCodec, err := share.NewCodec("other-secret", time.Hour)
	require.NoError(t, err)
	forged, _, err := forgedCodec.Encode("gal-123", "summer-wedding")
	require.NoError(t, err)

	for _, token := range []string{"never1ss", forged} {
		req := httptest.NewRequest(http.MethodGet, "/api/galleries/validate-token?token="+token, nil)
		rec := httptest.NewRecorder()
		a.ValidateShareToken(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp struct {
			Valid bool   `json:"valid"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Equal(t, "Invalid or expired token", resp.Error)
	}
}
