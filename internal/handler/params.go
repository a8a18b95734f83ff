package handler

import (
	"net/http"
	"shopco-api/internal/middleware"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func currentUserID(c echo.Context) (uint, error) {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok || userID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return userID, nil
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

func optionalUintQuery(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

func optionalDecimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return &v, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

// deliveryFee reads the optional ?deliveryFee= query parameter, defaulting to zero.
func deliveryFee(c echo.Context) (decimal.Decimal, error) {
	fee, err := optionalDecimalQuery(c, "deliveryFee")
	if err != nil {
		return decimal.Zero, err
	}
	if fee == nil {
		return decimal.Zero, nil
	}
	if fee.IsNegative() {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, "deliveryFee cannot be negative")
	}
	return *fee, nil
}

// bindAndValidate binds the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
