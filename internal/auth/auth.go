// Package auth signs users in with GitHub and keeps them signed in with a
// JWT session cookie. The session is signed with the first configured secret
// and accepted when any of the secrets verifies it, so secrets can be rotated.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/patric-chuzhbe/atomicnotes/internal/user"
)

// SessionCookieName is the cookie holding the session JWT.
const SessionCookieName = "_session"

const sessionTTL = 30 * 24 * time.Hour

// ErrNoSessionSecrets is returned by New when no secret is configured.
var ErrNoSessionSecrets = errors.New("at least one session secret is required")

// Claims represents the JWT claims of a session.
type Claims struct {
	jwt.RegisteredClaims
	UserID            string `json:"user_id"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type contextKey string

const userKey contextKey = "user"

// Auth handles sessions and the GitHub sign in flow.
type Auth struct {
	github        *githubProvider
	secrets       [][]byte
	adminID       string
	secureCookies bool
}

type initOptions struct {
	provider providerOptions
}

type InitOption func(*initOptions)

// New creates an Auth. sessionSecrets[0] signs new sessions. secureCookies
// marks cookies Secure, which production deployments need.
func New(
	clientID string,
	clientSecret string,
	callbackURL string,
	adminID string,
	sessionSecrets []string,
	secureCookies bool,
	optionsProto ...InitOption,
) (*Auth, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	secrets := make([][]byte, 0, len(sessionSecrets))
	for _, secret := range sessionSecrets {
		if secret != "" {
			secrets = append(secrets, []byte(secret))
		}
	}
	if len(secrets) == 0 {
		return nil, ErrNoSessionSecrets
	}

	return &Auth{
		github:        newGithubProvider(clientID, clientSecret, callbackURL, options.provider),
		secrets:       secrets,
		adminID:       adminID,
		secureCookies: secureCookies,
	}, nil
}

// CurrentUser returns the signed in user of request.
func (a *Auth) CurrentUser(request *http.Request) (*user.User, bool) {
	if usr, ok := UserFromContext(request.Context()); ok {
		return usr, true
	}

	return a.userFromCookie(request)
}

// IsAdmin reports whether the signed in user is the configured admin.
func (a *Auth) IsAdmin(request *http.Request) bool {
	usr, ok := a.CurrentUser(request)

	return ok && a.adminID != "" && usr.ID == a.adminID
}

// Middleware puts the signed in user, if any, into the request context.
func (a *Auth) Middleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		usr, ok := a.userFromCookie(request)
		if !ok {
			h.ServeHTTP(response, request)
			return
		}

		h.ServeHTTP(response, request.WithContext(WithUser(request.Context(), usr)))
	}

	return http.HandlerFunc(middleware)
}

// WithUser returns a copy of ctx carrying usr.
func WithUser(ctx context.Context, usr *user.User) context.Context {
	return context.WithValue(ctx, userKey, usr)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	usr, ok := ctx.Value(userKey).(*user.User)

	return usr, ok && usr != nil && usr.ID != ""
}

func (a *Auth) userFromCookie(request *http.Request) (*user.User, bool) {
	cookie, err := request.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := a.parseSession(cookie.Value)
	if err != nil {
		return nil, false
	}

	return &user.User{ID: claims.UserID, ProfilePictureURL: claims.ProfilePictureURL}, true
}

func (a *Auth) parseSession(tokenString string) (*Claims, error) {
	var lastErr error
	for _, secret := range a.secrets {
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(
			tokenString,
			claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			},
		)
		if err == nil && token.Valid && claims.UserID != "" {
			return claims, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("session has no user")
	}

	return nil, lastErr
}

func (a *Auth) buildJWTString(usr *user.User, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		UserID:            usr.ID,
		ProfilePictureURL: usr.ProfilePictureURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.secrets[0])
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (a *Auth) setSession(response http.ResponseWriter, usr *user.User) error {
	now := time.Now()
	tokenString, err := a.buildJWTString(usr, now)
	if err != nil {
		return err
	}

	http.SetCookie(response, a.cookie(SessionCookieName, tokenString, "/", int(sessionTTL.Seconds())))

	return nil
}

func (a *Auth) clearSession(response http.ResponseWriter) {
	http.SetCookie(response, a.cookie(SessionCookieName, "", "/", -1))
}

func (a *Auth) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
