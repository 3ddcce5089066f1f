// Package handler contains the HTTP handlers for the application.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"harbor/config"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/usecase"
)

// RefreshTokenCookie carries the refresh token for browser clients signed in
// through the OAuth redirect flow.
const RefreshTokenCookie = "harbor_refresh_token"

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, cfg: cfg, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type signOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type idTokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type authTokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

// accountResponse is the public view of an account; credentials and provider
// linkage stay server-side.
type accountResponse struct {
	ID            uuid.UUID               `json:"id"`
	Email         string                  `json:"email"`
	Role          entity.Role             `json:"role"`
	EmailVerified bool                    `json:"emailVerified"`
	Customer      *entity.CustomerProfile `json:"customerProfile,omitempty"`
	Admin         *entity.AdminProfile    `json:"adminProfile,omitempty"`
}

func newAccountResponse(account *entity.Account) accountResponse {
	return accountResponse{
		ID:            account.ID,
		Email:         account.Email,
		Role:          account.Role,
		EmailVerified: account.EmailVerified,
		Customer:      account.CustomerProfile,
		Admin:         account.AdminProfile,
	}
}

// SignIn handles the email/password sign-in request.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.SignIn(c.Request().Context(), usecase.SignInInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authTokensResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		Role:         string(output.Account.Role),
	}, "Signed in successfully")
}

// Refresh handles the refresh token rotation request.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		return errors.WithStack(domainerrors.ErrRefreshTokenInvalid)
	}

	output, err := h.uc.Refresh(c.Request().Context(), usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authTokensResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		Role:         string(output.Account.Role),
	}, "Token refreshed successfully")
}

// SignOut revokes the presented refresh token's session. It succeeds even
// when the session is already gone.
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req signOutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-out input")
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}

	if req.RefreshToken != "" {
		if err := h.uc.SignOut(c.Request().Context(), req.RefreshToken); err != nil {
			return errors.WithStack(err)
		}
	}

	h.clearAuthCookies(c)

	return response.Success(c, http.StatusOK, nil, "Signed out successfully")
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	account, err := h.uc.GetAccount(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account), "Account retrieved successfully")
}

// GoogleSignIn redirects the browser to the Google consent page.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	return h.googleSignIn(c, false)
}

// GoogleAdminSignIn redirects the browser to the Google consent page for the
// admin variant.
func (h *AuthHandler) GoogleAdminSignIn(c echo.Context) error {
	return h.googleSignIn(c, true)
}

func (h *AuthHandler) googleSignIn(c echo.Context, admin bool) error {
	authURL, err := h.uc.GoogleAuthURL(c.Request().Context(), admin)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes the customer code flow and signs the browser in
// via cookies.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	return h.googleCallback(c, h.uc.GoogleCallbackCustomer)
}

// GoogleAdminCallback completes the admin code flow. Unknown identities are
// rejected rather than auto-created.
func (h *AuthHandler) GoogleAdminCallback(c echo.Context) error {
	return h.googleCallback(c, h.uc.GoogleCallbackAdmin)
}

func (h *AuthHandler) googleCallback(c echo.Context, complete func(ctx context.Context, input usecase.GoogleCallbackInput) (*usecase.AuthOutput, error)) error {
	if errCode := c.QueryParam("error"); errCode != "" {
		return h.redirectWithError(c, "OAUTH_FAILED")
	}

	output, err := complete(c.Request().Context(), usecase.GoogleCallbackInput{
		Code:      c.QueryParam("code"),
		State:     c.QueryParam("state"),
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		code := "OAUTH_FAILED"
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			code = appErr.ErrorCode()
		}

		return h.redirectWithError(c, code)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return c.Redirect(http.StatusFound, h.cfg.GoogleOAuth.SuccessURL)
}

// GoogleIDTokenSignIn authenticates a client-obtained Google ID token
// (mobile flows) and returns the token pair as JSON.
func (h *AuthHandler) GoogleIDTokenSignIn(c echo.Context) error {
	var req idTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid ID token input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.SignInWithGoogleIDToken(c.Request().Context(), req.IDToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authTokensResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		Role:         string(output.Account.Role),
	}, "Google sign-in successful")
}

func (h *AuthHandler) redirectWithError(c echo.Context, code string) error {
	return c.Redirect(http.StatusFound, h.cfg.GoogleOAuth.SignInURL+"?error="+code)
}

func (h *AuthHandler) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/auth",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	c.SetCookie(&http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
