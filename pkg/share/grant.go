package share

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeGalleryShare is the claim tag that distinguishes gallery share
// grants from any other signed token the system might mint later.
const PurposeGalleryShare = "gallery-share"

// Grant is the signed claim asserting read access to one gallery until a
// given expiry. It is immutable after issuance.
type Grant struct {
	GalleryID string
	Slug      string
	Purpose   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec encodes grants into signed compact strings and back. Decode
// verifies the signature and structure only; expiry and purpose are
// resolution-time policy and are checked by the resolver, not here.
type Codec struct {
	secret   []byte
	lifetime time.Duration
}

func NewCodec(secret string, lifetime time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("share signing secret is not configured")
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &Codec{secret: []byte(secret), lifetime: lifetime}, nil
}

func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

func (c *Codec) Encode(galleryID string, gallerySlug string) (string, Grant, error) {
	now := time.Now()
	grant := Grant{
		GalleryID: galleryID,
		Slug:      gallerySlug,
		Purpose:   PurposeGalleryShare,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.lifetime),
	}

	claims := jwt.MapClaims{
		"galleryId": grant.GalleryID,
		"slug":      grant.Slug,
		"purpose":   grant.Purpose,
		"iat":       grant.IssuedAt.Unix(),
		"exp":       grant.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", Grant{}, err
	}

	return signed, grant, nil
}

func (c *Codec) Decode(signed string) (Grant, error) {
	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Grant{}, ErrInvalidSignature
		}
		return Grant{}, ErrMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Grant{}, ErrMalformed
	}

	galleryID, _ := claims["galleryId"].(string)
	gallerySlug, _ := claims["slug"].(string)
	purpose, _ := claims["purpose"].(string)
	if galleryID == "" || gallerySlug == "" {
		return Grant{}, ErrMalformed
	}

	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return Grant{}, ErrMalformed
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Grant{}, ErrMalformed
	}

	return Grant{
		GalleryID: galleryID,
		Slug:      gallerySlug,
		Purpose:   purpose,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}
