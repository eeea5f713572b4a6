package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/framefolio/framefolio/pkg/config"
)

const profileCacheTTL = time.Minute

// OAuthService drives the authorization-code login flow against the
// configured identity provider and verifies the resulting session cookie.
// It is the production SessionVerifier.
type OAuthService struct {
	conf     config.Auth
	oauth    *oauth2.Config
	sessions *jwtauth.JWTAuth

	// Short-lived userinfo cache so repeated /me calls within the same
	// minute do not hammer the provider.
	profiles *gocache.Cache
	client   *http.Client
}

func NewOAuthService(conf config.Auth, baseURL string) (*OAuthService, error) {
	if conf.SessionSecret == "" {
		return nil, errors.New("auth session secret is not configured")
	}

	timeout := time.Duration(conf.SessionTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &OAuthService{
		conf: conf,
		oauth: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			RedirectURL:  baseURL + "/api/auth/callback",
			Scopes:       []string{conf.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  conf.IssuerBaseURL + "/authorize",
				TokenURL: conf.IssuerBaseURL + "/oauth/token",
			},
		},
		sessions: jwtauth.New("HS256", []byte(conf.SessionSecret), nil),
		profiles: gocache.New(profileCacheTTL, 5*time.Minute),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type loginState struct {
	ReturnTo string `json:"returnTo"`
}

func (s *OAuthService) Login(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("returnTo")
	if returnTo == "" {
		returnTo = "/"
	}

	stateBytes, _ := json.Marshal(loginState{ReturnTo: returnTo})
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *OAuthService) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("OAuth code exchange failed")
		http.Redirect(w, r, "/?error=login_error", http.StatusFound)
		return
	}

	profile, err := s.fetchProfile(r.Context(), token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("Unable to fetch user profile after login")
		http.Redirect(w, r, "/?error=login_error", http.StatusFound)
		return
	}

	claims := map[string]interface{}{
		"sub":   profile.Subject,
		"email": profile.Email,
		"name":  profile.Name,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, time.Duration(s.conf.SessionLifetimeHours)*time.Hour)

	_, sessionJWT, err := s.sessions.Encode(claims)
	if err != nil {
		log.Error().Err(err).Msg("Unable to encode session token")
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	maxAge := int((time.Duration(s.conf.SessionLifetimeHours) * time.Hour).Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionJWT,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	returnTo := "/"
	if stateBytes, err := base64.RawURLEncoding.DecodeString(r.URL.Query().Get("state")); err == nil {
		var st loginState
		if json.Unmarshal(stateBytes, &st) == nil && st.ReturnTo != "" {
			returnTo = st.ReturnTo
		}
	}

	http.Redirect(w, r, returnTo, http.StatusFound)
}

func (s *OAuthService) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{SessionCookie, AccessTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me proxies the provider's userinfo endpoint for the logged-in user, with
// a short cache keyed by subject.
func (s *OAuthService) Me(w http.ResponseWriter, r *http.Request) {
	session, err := s.Verify(r.Context(), r)
	if err != nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, render.M{"error": "Not authenticated"})
		return
	}

	if cached, found := s.profiles.Get(session.Subject); found {
		w.Header().Set("Cache-Control", "private, max-age=60")
		render.JSON(w, r, cached)
		return
	}

	accessToken, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		// No provider token anymore; answer from the session claims.
		render.JSON(w, r, render.M{"sub": session.Subject, "email": session.Email, "name": session.Name})
		return
	}

	profile, err := s.fetchUserInfo(r.Context(), accessToken.Value)
	if err != nil {
		log.Warn().Err(err).Msg("Userinfo fetch failed, answering from session claims")
		render.JSON(w, r, render.M{"sub": session.Subject, "email": session.Email, "name": session.Name})
		return
	}

	s.profiles.SetDefault(session.Subject, profile)
	w.Header().Set("Cache-Control", "private, max-age=60")
	render.JSON(w, r, profile)
}

// Verify implements SessionVerifier against the session cookie.
func (s *OAuthService) Verify(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	token, err := jwtauth.VerifyToken(s.sessions, cookie.Value)
	if err != nil {
		return nil, ErrNoSession
	}

	session := &Session{Subject: token.Subject()}
	if email, ok := token.Get("email"); ok {
		session.Email, _ = email.(string)
	}
	if name, ok := token.Get("name"); ok {
		session.Name, _ = name.(string)
	}
	return session, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, accessToken string) (*Session, error) {
	info, err := s.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	session := &Session{}
	session.Subject, _ = info["sub"].(string)
	session.Email, _ = info["email"].(string)
	session.Name, _ = info["name"].(string)
	if session.Subject == "" {
		return nil, errors.New("userinfo response missing subject")
	}
	return session, nil
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, accessToken string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.conf.IssuerBaseURL+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return info, nil
}
