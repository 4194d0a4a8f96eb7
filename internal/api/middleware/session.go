package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-portal/internal/api/webctx"
	"github.com/99minutos/auth-portal/internal/core/service"
)

const msgLoginRequired = "Please log in to view that resource"

// SessionGuard decides whether a session token grants access.
type SessionGuard interface {
	Check(ctx context.Context, token string) (service.Decision, error)
}

// Session attaches a webctx.RequestContext built from the request cookies and
// writes queued flashes back out just before the response header is sent.
func Session(cookies webctx.Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var incoming []webctx.Flash
			hadFlashCookie := false
			if ck, err := c.Cookie(webctx.FlashCookie); err == nil {
				incoming = webctx.DecodeFlashes(ck.Value)
				hadFlashCookie = true
			}

			rc := webctx.New(cookies.SessionToken(c), incoming)
			webctx.Attach(c, rc)

			c.Response().Before(func() {
				switch {
				case len(rc.Pending()) > 0:
					cookies.SetFlashes(c, rc.Pending())
				case hadFlashCookie:
					cookies.ClearFlashes(c)
				}
			})

			return next(c)
		}
	}
}

// Identify resolves the session user for pages that render differently when
// signed in. Failures are ignored and leave the request anonymous.
func Identify(guard SessionGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := webctx.From(c)
			if rc.SessionToken != "" && rc.User == nil {
				if d, err := guard.Check(c.Request().Context(), rc.SessionToken); err == nil && d.Allowed {
					rc.User = d.User
				}
			}
			return next(c)
		}
	}
}

// RequireAuth lets the request through only when its session resolves to a
// live user. Anyone else is redirected to the login page with a notice.
func RequireAuth(guard SessionGuard, cookies webctx.Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := webctx.From(c)

			d, err := guard.Check(c.Request().Context(), rc.SessionToken)
			if err != nil {
				return fmt.Errorf("check session: %w", err)
			}
			if !d.Allowed {
				if rc.SessionToken != "" {
					cookies.ClearSession(c)
					rc.SessionToken = ""
				}
				rc.AddFlash(webctx.FlashError, msgLoginRequired)
				return c.Redirect(http.StatusSeeOther, d.Redirect)
			}

			rc.User = d.User
			return next(c)
		}
	}
}
