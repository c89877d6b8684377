package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/user"
)

const (
	stateCookieName = "_oauth_state"
	stateCookiePath = "/auth"
	stateTTLSeconds = 10 * 60

	defaultProfileURL = "https://api.github.com/user"
)

type providerOptions struct {
	endpoint   *oauth2.Endpoint
	profileURL string
}

// WithGithubEndpoint replaces the GitHub OAuth endpoint.
func WithGithubEndpoint(endpoint oauth2.Endpoint) InitOption {
	return func(options *initOptions) {
		options.provider.endpoint = &endpoint
	}
}

// WithProfileURL replaces the GitHub user API URL.
func WithProfileURL(profileURL string) InitOption {
	return func(options *initOptions) {
		options.provider.profileURL = profileURL
	}
}

type githubProvider struct {
	oauth       *oauth2.Config
	callbackURL string
	profileURL  string
	client      *resty.Client
}

type githubProfile struct {
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
}

func newGithubProvider(clientID, clientSecret, callbackURL string, options providerOptions) *githubProvider {
	endpoint := github.Endpoint
	if options.endpoint != nil {
		endpoint = *options.endpoint
	}
	profileURL := defaultProfileURL
	if options.profileURL != "" {
		profileURL = options.profileURL
	}

	return &githubProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
		},
		callbackURL: callbackURL,
		profileURL:  profileURL,
		client:      resty.New().SetHeader("Accept", "application/vnd.github+json"),
	}
}

// redirectURI is the callback URL carrying where to go after signing in.
func (p *githubProvider) redirectURI(redirectTo string) string {
	separator := "?"
	if strings.Contains(p.callbackURL, "?") {
		separator = "&"
	}

	return p.callbackURL + separator + url.Values{"redirect": {redirectTo}}.Encode()
}

// Login starts the GitHub OAuth flow.
func (a *Auth) Login(response http.ResponseWriter, request *http.Request) {
	redirectTo := SafeRedirect(request.URL.Query().Get("redirect"))

	state, err := randomState()
	if err != nil {
		logger.Log.Errorw("failed to generate an OAuth state", zap.Error(err))
		http.Error(response, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	http.SetCookie(response, a.cookie(stateCookieName, state, stateCookiePath, stateTTLSeconds))

	authURL := a.github.oauth.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("redirect_uri", a.github.redirectURI(redirectTo)),
	)
	http.Redirect(response, request, authURL, http.StatusFound)
}

// Callback finishes the GitHub OAuth flow. Success and failure both end in a
// redirect to the requested local path; only success sets a session.
func (a *Auth) Callback(response http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	redirectTo := SafeRedirect(query.Get("redirect"))

	http.SetCookie(response, a.cookie(stateCookieName, "", stateCookiePath, -1))

	usr, err := a.authenticate(request, redirectTo)
	if err != nil {
		logger.Log.Infow("GitHub sign in failed", zap.Error(err))
		http.Redirect(response, request, redirectTo, http.StatusFound)
		return
	}

	if err := a.setSession(response, usr); err != nil {
		logger.Log.Errorw("failed to write the session", zap.Error(err))
		http.Error(response, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	http.Redirect(response, request, redirectTo, http.StatusFound)
}

func (a *Auth) authenticate(request *http.Request, redirectTo string) (*user.User, error) {
	query := request.URL.Query()

	if oauthErr := query.Get("error"); oauthErr != "" {
		return nil, fmt.Errorf("GitHub returned %q", oauthErr)
	}

	stateCookie, err := request.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		return nil, fmt.Errorf("OAuth state mismatch")
	}

	token, err := a.github.oauth.Exchange(
		request.Context(),
		query.Get("code"),
		oauth2.SetAuthURLParam("redirect_uri", a.github.redirectURI(redirectTo)),
	)
	if err != nil {
		return nil, fmt.Errorf("in internal/auth/github.go/authenticate(): error while `oauth.Exchange()` calling: %w", err)
	}

	var profile githubProfile
	profileResponse, err := a.github.client.R().
		SetContext(request.Context()).
		SetAuthToken(token.AccessToken).
		SetResult(&profile).
		Get(a.github.profileURL)
	if err != nil {
		return nil, fmt.Errorf("in internal/auth/github.go/authenticate(): error while fetching the GitHub profile: %w", err)
	}
	if profileResponse.IsError() || profile.ID == 0 {
		return nil, fmt.Errorf("GitHub profile request returned %d", profileResponse.StatusCode())
	}

	return &user.User{
		ID:                strconv.FormatInt(profile.ID, 10),
		ProfilePictureURL: profile.AvatarURL,
	}, nil
}

// Logout clears the session and redirects to the requested local path.
func (a *Auth) Logout(response http.ResponseWriter, request *http.Request) {
	a.clearSession(response)
	http.Redirect(response, request, SafeRedirect(request.URL.Query().Get("redirect")), http.StatusFound)
}

// SafeRedirect returns to when it is a path on this site and "/" otherwise.
func SafeRedirect(to string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return "/"
	}

	return to
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
