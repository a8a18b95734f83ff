package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"
	"time"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh_token"

type UserHandler struct {
	userService  service.UserService
	refreshTTL   time.Duration
	secureCookie bool
}

func NewUserHandler(userService service.UserService, refreshTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		refreshTTL:   refreshTTL,
		secureCookie: secureCookie,
	}
}

func (h *UserHandler) setRefreshCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.userService.Register(ctx, &req)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.refreshTTL.Seconds()))
	return c.JSON(http.StatusCreated, session)
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.userService.Login(ctx, &req)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.refreshTTL.Seconds()))
	return c.JSON(http.StatusOK, session)
}

// Refresh reads the refresh token from the cookie, falling back to the JSON body.
func (h *UserHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var token string
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req dto.RefreshRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		token = req.RefreshToken
	}

	session, err := h.userService.Refresh(ctx, token)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.refreshTTL.Seconds()))
	return c.JSON(http.StatusOK, session)
}

func (h *UserHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		return err
	}

	h.setRefreshCookie(c, "", -1)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(ctx, userID, &req); err != nil {
		return err
	}

	h.setRefreshCookie(c, "", -1)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed"})
}
