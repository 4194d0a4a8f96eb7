// Package webctx carries per-request web state: the session token presented by
// the client, the user resolved from it, and one-shot flash messages.
//
// A RequestContext is attached to each echo.Context by middleware.Session and
// handed explicitly to the handlers that need it. Nothing here is global.
package webctx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-portal/internal/core/domain"
)

const (
	contextKey = "webctx"

	// FlashCookie holds flashes between a redirect and the next request.
	FlashCookie = "flash"

	maxFlashes = 8
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot, next-request-only notice.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// RequestContext is the request-scoped state shared by middleware and handlers.
type RequestContext struct {
	SessionToken string
	User         *domain.User

	incoming []Flash
	pending  []Flash
}

// Flashes returns the messages delivered with this request.
func (rc *RequestContext) Flashes() []Flash {
	return rc.incoming
}

// AddFlash queues a message for the next request.
func (rc *RequestContext) AddFlash(kind FlashKind, msg string) {
	if len(rc.pending) >= maxFlashes {
		return
	}
	rc.pending = append(rc.pending, Flash{Kind: kind, Message: msg})
}

// Pending returns the messages queued for the next request.
func (rc *RequestContext) Pending() []Flash {
	return rc.pending
}

// New builds a RequestContext from the cookies on the request.
func New(sessionToken string, incoming []Flash) *RequestContext {
	return &RequestContext{SessionToken: sessionToken, incoming: incoming}
}

// Attach stores rc on c.
func Attach(c echo.Context, rc *RequestContext) {
	c.Set(contextKey, rc)
}

// From returns the RequestContext attached to c, or an empty one when the
// Session middleware did not run.
func From(c echo.Context) *RequestContext {
	if rc, ok := c.Get(contextKey).(*RequestContext); ok && rc != nil {
		return rc
	}
	rc := &RequestContext{}
	Attach(c, rc)
	return rc
}

// EncodeFlashes serialises flashes into a cookie-safe value.
func EncodeFlashes(flashes []Flash) string {
	b, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeFlashes is lenient: anything unreadable yields no flashes.
func DecodeFlashes(v string) []Flash {
	if v == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	if len(flashes) > maxFlashes {
		flashes = flashes[:maxFlashes]
	}
	return flashes
}

// Cookies writes the session and flash cookies with consistent attributes.
type Cookies struct {
	SessionName string
	Secure      bool
	SessionTTL  time.Duration
}

func (cs Cookies) SetSession(c echo.Context, token string) {
	c.SetCookie(cs.cookie(cs.SessionName, token, int(cs.SessionTTL.Seconds())))
}

func (cs Cookies) ClearSession(c echo.Context) {
	c.SetCookie(cs.cookie(cs.SessionName, "", -1))
}

// SessionToken returns the token presented by the client, if any.
func (cs Cookies) SessionToken(c echo.Context) string {
	ck, err := c.Cookie(cs.SessionName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (cs Cookies) SetFlashes(c echo.Context, flashes []Flash) {
	c.SetCookie(cs.cookie(FlashCookie, EncodeFlashes(flashes), 0))
}

func (cs Cookies) ClearFlashes(c echo.Context) {
	c.SetCookie(cs.cookie(FlashCookie, "", -1))
}

func (cs Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
