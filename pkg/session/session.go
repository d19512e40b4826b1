package session

import (
	"net/http"

	"github.com/Kazbonfim/rocketseat-downloader2/pkg/utils"
)

// Cookie names the platform expects alongside the Authorization header.
const (
	accessCookie  = "skylab_next_access_token_v3"
	refreshCookie = "skylab_next_refresh_token_v3"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// Session is the credential bundle sent with every API request. It is built
// by login, persisted by Store, and otherwise read-only.
type Session struct {
	TokenType    string            `json:"token_type"`
	Token        string            `json:"token"`
	RefreshToken string            `json:"refresh_token"`
	Headers      map[string]string `json:"headers"`
	Cookies      map[string]string `json:"cookies"`
}

// New returns an anonymous session carrying only the default headers.
func New(referer string) *Session {
	return &Session{
		Headers: map[string]string{
			"User-Agent": defaultUserAgent,
			"Referer":    referer,
		},
		Cookies: map[string]string{},
	}
}

// Authorize installs the tokens returned by a successful login. The refresh
// token is stored but never exchanged; deleting the session file is the only
// way to re-authenticate.
func (s *Session) Authorize(tokenType, token, refreshToken string) {
	s.TokenType = tokenType
	s.Token = token
	s.RefreshToken = refreshToken
	s.Headers["Authorization"] = utils.Capitalize(tokenType) + " " + token
	s.Cookies[accessCookie] = token
	s.Cookies[refreshCookie] = refreshToken
}

// Authenticated reports whether the session carries an access token.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// Apply stamps the session's headers and cookies onto an outgoing request.
func (s *Session) Apply(req *http.Request) {
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range s.Cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
}
