package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
)

// CreateShareLink mints a time-limited share link for one gallery. The
// caller is expected to be the gallery's owner; ownership is established
// before this endpoint is hit.
func (a *FramefolioAPI) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		GalleryID string `json:"galleryId"`
		Slug      string `json:"slug"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request body"))
		return
	}

	if requestBody.GalleryID == "" || requestBody.Slug == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, render.M{"error": "Gallery ID and slug are required"})
		return
	}

	link, err := a.issuer.Issue(requestBody.GalleryID, requestBody.Slug)
	if err != nil {
		log.Error().Err(err).Str("gallery", requestBody.Slug).Msg("Unable to issue share link")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, render.M{"error": "Failed to generate share token"})
		return
	}

	render.JSON(w, r, render.M{
		"token":     link.Token,
		"shareUrl":  link.URL,
		"expiresIn": link.ExpiresIn,
		"expiresAt": link.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// ValidateShareToken reports whether a token is currently good and which
// gallery it unlocks. Every failure kind collapses to one reason for the
// caller; the precise kind is only logged.
func (a *FramefolioAPI) ValidateShareToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, render.M{"valid": false, "error": "No token provided"})
		return
	}

	grant, err := a.resolver.Resolve(token)
	if err != nil {
		log.Info().Err(err).Msg("Share token validation failed")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, render.M{"valid": false, "error": "Invalid or expired token"})
		return
	}

	render.JSON(w, r, render.M{
		"valid":     true,
		"galleryId": grant.GalleryID,
		"slug":      grant.Slug,
		"expiresAt": grant.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
