package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-portal/internal/api/view"
	"github.com/99minutos/auth-portal/internal/api/webctx"
)

// PageHandler serves the static and guarded pages.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index handles GET /.
func (h *PageHandler) Index(c echo.Context) error {
	rc := webctx.From(c)
	return c.Render(http.StatusOK, view.PageIndex, view.Page{Title: "Welcome", Flashes: rc.Flashes(), User: rc.User})
}

// Dashboard handles GET /dashboard. It must sit behind middleware.RequireAuth,
// which places the resolved user on the request context.
func (h *PageHandler) Dashboard(c echo.Context) error {
	rc := webctx.From(c)
	if rc.User == nil {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}
	return c.Render(http.StatusOK, view.PageDashboard, view.Page{Title: "Dashboard", Flashes: rc.Flashes(), User: rc.User})
}
