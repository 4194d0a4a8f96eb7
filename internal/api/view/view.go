// Package view renders the portal's HTML pages through echo.Renderer.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-portal/internal/api/webctx"
	"github.com/99minutos/auth-portal/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageIndex     = "index"
	PageLogin     = "login"
	PageRegister  = "register"
	PageDashboard = "dashboard"
	PageError     = "error"
)

// Page is the data every template receives.
type Page struct {
	Title   string
	Flashes []webctx.Flash
	User    *domain.User
	Errors  []string
	Form    FormValues
	Message string
}

// FormValues are the non-secret fields echoed back into a re-rendered form.
type FormValues struct {
	Name  string
	Email string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageLogin, PageRegister, PageDashboard, PageError} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
