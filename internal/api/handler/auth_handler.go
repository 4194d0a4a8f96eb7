package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-portal/internal/api/view"
	"github.com/99minutos/auth-portal/internal/api/webctx"
	"github.com/99minutos/auth-portal/internal/core/domain"
	"github.com/99minutos/auth-portal/internal/core/ports"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"

	msgMissingFields      = "Please fill in all fields"
	msgInvalidCredentials = "Invalid email or password"
	msgLoggedOut          = "You are logged out"
	msgRegistered         = "You are now registered and can login"
	msgDuplicateEmail     = "User with the same email address already exists"
	msgBadForm            = "Invalid form submission"
	msgTryAgain           = "Something went wrong, please try again"
)

type AuthHandler struct {
	auth     ports.Authenticator
	register ports.RegistrationService
	sessions ports.SessionManager
	cookies  webctx.Cookies
	log      zerolog.Logger
}

func NewAuthHandler(
	auth ports.Authenticator,
	register ports.RegistrationService,
	sessions ports.SessionManager,
	cookies webctx.Cookies,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		register: register,
		sessions: sessions,
		cookies:  cookies,
		log:      log,
	}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerRequest struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Password2 string `json:"password2" form:"password2"`
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	rc := webctx.From(c)
	return c.Render(http.StatusOK, view.PageLogin, view.Page{Title: "Login", Flashes: rc.Flashes()})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	rc := webctx.From(c)

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		rc.AddFlash(webctx.FlashError, msgMissingFields)
		return c.Redirect(http.StatusSeeOther, loginPath)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		rc.AddFlash(webctx.FlashError, msgMissingFields)
		return c.Redirect(http.StatusSeeOther, loginPath)
	}

	ctx := c.Request().Context()
	user, err := h.auth.Authenticate(ctx, domain.Credential{Email: req.Email, Password: req.Password})
	if err != nil {
		if domain.IsCredentialFailure(err) {
			rc.AddFlash(webctx.FlashError, msgInvalidCredentials)
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
		return fmt.Errorf("login: %w", err)
	}

	// Never carry a pre-login session across authentication.
	if rc.SessionToken != "" {
		if err := h.sessions.Invalidate(ctx, rc.SessionToken); err != nil {
			h.log.Warn().Err(err).Msg("failed to invalidate previous session")
		}
	}

	token, err := h.sessions.Issue(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	h.cookies.SetSession(c, token)
	rc.SessionToken = token
	rc.User = user

	return c.Redirect(http.StatusSeeOther, dashboardPath)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	rc := webctx.From(c)

	if rc.SessionToken != "" {
		if err := h.sessions.Invalidate(c.Request().Context(), rc.SessionToken); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	h.cookies.ClearSession(c)
	rc.SessionToken = ""
	rc.User = nil

	rc.AddFlash(webctx.FlashSuccess, msgLoggedOut)
	return c.Redirect(http.StatusSeeOther, loginPath)
}

// ShowRegister handles GET /register.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	rc := webctx.From(c)
	return c.Render(http.StatusOK, view.PageRegister, view.Page{Title: "Register", Flashes: rc.Flashes()})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, req, []string{msgBadForm})
	}

	_, err := h.register.Register(c.Request().Context(), ports.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.Password2,
	})
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			return h.renderRegister(c, http.StatusUnprocessableEntity, req, ve.Messages)
		case errors.Is(err, domain.ErrDuplicateEmail):
			return h.renderRegister(c, http.StatusConflict, req, []string{msgDuplicateEmail})
		default:
			h.log.Error().Err(err).Msg("registration failed")
			return h.renderRegister(c, http.StatusInternalServerError, req, []string{msgTryAgain})
		}
	}

	webctx.From(c).AddFlash(webctx.FlashSuccess, msgRegistered)
	return c.Redirect(http.StatusSeeOther, loginPath)
}

// renderRegister re-renders the form. Passwords are never echoed back.
func (h *AuthHandler) renderRegister(c echo.Context, status int, req registerRequest, errs []string) error {
	return c.Render(status, view.PageRegister, view.Page{
		Title:   "Register",
		Flashes: webctx.From(c).Flashes(),
		Errors:  errs,
		Form: view.FormValues{
			Name:  req.Name,
			Email: req.Email,
		},
	})
}
