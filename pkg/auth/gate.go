package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/framefolio/framefolio/pkg/config"
	"github.com/framefolio/framefolio/pkg/share"
)

// Paths the gate always lets through without any check. The auth flow
// itself has to be reachable while logged out, and so do the share
// issuance/validation endpoints, or checking auth would require auth.
var defaultPublicPrefixes = []string{
	"/api/auth/login",
	"/api/auth/callback",
	"/api/auth/logout",
	"/api/auth/me",
	"/api/galleries/share",
	"/api/galleries/validate-token",
	"/healthcheck",
	"/metrics",
}

// Gate is the per-request authorization decision. Each protected request
// is classified exactly once: public path, token bypass, or session check.
// An invalid or expired share token never hard-fails the request; it falls
// through to the session check so a stale link still works for a logged-in
// owner.
type Gate struct {
	verifier       SessionVerifier
	resolver       *share.Resolver
	publicPrefixes []string
	loginPath      string
	timeout        time.Duration
	failOpen       bool
}

func NewGate(verifier SessionVerifier, resolver *share.Resolver, conf config.Auth) *Gate {
	timeout := time.Duration(conf.SessionTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	failOpen := conf.FailurePolicy == config.FailOpenForDevelopment
	if failOpen {
		log.Warn().Msg("Access gate is configured fail-open; session check failures will allow access")
	}

	return &Gate{
		verifier:       verifier,
		resolver:       resolver,
		publicPrefixes: defaultPublicPrefixes,
		loginPath:      "/api/auth/login",
		timeout:        timeout,
		failOpen:       failOpen,
	}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if token := r.URL.Query().Get("token"); token != "" {
			grant, err := g.resolveToken(token, r.URL.Path)
			if err == nil {
				// Shared URLs must not be cached by intermediaries.
				w.Header().Set("Cache-Control", "no-store, must-revalidate")
				next.ServeHTTP(w, r.WithContext(WithGrant(r.Context(), grant)))
				return
			}
			log.Info().Err(err).Str("path", r.URL.Path).Msg("Share token rejected, falling back to session")
		}

		session, err := g.checkSession(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		case err == ErrNoSession:
			g.redirectToLogin(w, r)
		default:
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Session check failed")
			if g.failOpen {
				log.Warn().Msg("Allowing request despite session check failure (fail-open)")
				next.ServeHTTP(w, r)
				return
			}
			g.redirectToLogin(w, r)
		}
	})
}

func (g *Gate) isPublic(path string) bool {
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resolveToken enforces the slug match whenever the request addresses a
// specific gallery; otherwise the grant's own slug scopes what the
// handlers may serve.
func (g *Gate) resolveToken(token string, path string) (share.Grant, error) {
	if galSlug := gallerySlugFromPath(path); galSlug != "" {
		return g.resolver.ResolveGallery(token, galSlug)
	}
	return g.resolver.Resolve(token)
}

// checkSession calls the external session capability bounded by the
// configured timeout. A hung upstream must not hang the gate.
func (g *Gate) checkSession(r *http.Request) (*Session, error) {
	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()

	type result struct {
		session *Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := g.verifier.Verify(ctx, r)
		done <- result{s, err}
	}()

	select {
	case res := <-done:
		if res.err != nil && res.err != ErrNoSession {
			return nil, ErrSessionCheckFailed
		}
		return res.session, res.err
	case <-ctx.Done():
		return nil, ErrSessionCheckFailed
	}
}

func (g *Gate) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, g.loginPath+"?returnTo="+returnTo, http.StatusFound)
}

func gallerySlugFromPath(path string) string {
	const marker = "/galleries/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.Trim(path[idx+len(marker):], "/")
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
