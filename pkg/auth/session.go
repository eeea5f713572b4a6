package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/framefolio/framefolio/pkg/share"
)

// SessionCookie holds the session JWT the callback handler mints after a
// successful login.
const SessionCookie = "framefolio_session"

// AccessTokenCookie holds the provider access token, used only to proxy
// the userinfo endpoint.
const AccessTokenCookie = "framefolio_access_token"

var (
	// ErrNoSession means the request simply is not logged in.
	ErrNoSession = errors.New("no authenticated session")

	// ErrSessionCheckFailed means the session check itself could not be
	// completed (upstream error or timeout). The gate's failure policy
	// decides what happens next.
	ErrSessionCheckFailed = errors.New("session check failed")
)

// Session describes the authenticated user behind a request.
type Session struct {
	Subject string
	Email   string
	Name    string
}

// SessionVerifier answers "is there a valid authenticated session for this
// request?". The access gate consumes it as an external capability and
// never looks inside.
type SessionVerifier interface {
	Verify(ctx context.Context, r *http.Request) (*Session, error)
}

type ctxKey int

const (
	sessionKey ctxKey = iota
	grantKey
)

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

// WithGrant marks a request as token-scoped: read access to exactly one
// gallery, share affordances suppressed.
func WithGrant(ctx context.Context, g share.Grant) context.Context {
	return context.WithValue(ctx, grantKey, g)
}

func GrantFromContext(ctx context.Context) (share.Grant, bool) {
	g, ok := ctx.Value(grantKey).(share.Grant)
	return g, ok
}
