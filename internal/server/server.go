package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"shopco-api/internal/apperr"
	"shopco-api/internal/auth"
	"shopco-api/internal/config"
	"shopco-api/internal/dto"
	"shopco-api/internal/handler"
	authmw "shopco-api/internal/middleware"
	"shopco-api/internal/model"
	"shopco-api/internal/service"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Services struct {
	User      service.UserService
	Brand     service.BrandService
	Type      service.TypeService
	BrandType service.BrandTypeService
	Product   service.ProductService
	Cart      service.CartService
	Order     service.OrderService
	Payment   service.PaymentService
}

type Server struct {
	echo   *echo.Echo
	tokens *auth.TokenManager

	userHandler       *handler.UserHandler
	brandHandler      *handler.BrandHandler
	typeHandler       *handler.TypeHandler
	brandTypeHandler  *handler.BrandTypeHandler
	productHandler    *handler.ProductHandler
	cartHandler       *handler.CartHandler
	orderHandler      *handler.OrderHandler
	adminOrderHandler *handler.AdminOrderHandler
	paypalHandler     *handler.PaypalHandler
}

func NewServer(cfg *config.Config, services Services, tokens *auth.TokenManager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = handleError

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
		AllowCredentials: true,
	}))

	// local uploads are served straight from disk; GCS objects have public URLs
	if cfg.Storage.GCSBucket == "" {
		e.Static(cfg.Storage.URLPrefix, cfg.Storage.Dir)
	}

	s := &Server{
		echo:              e,
		tokens:            tokens,
		userHandler:       handler.NewUserHandler(services.User, cfg.Auth.RefreshTTL, cfg.Auth.CookieSecure),
		brandHandler:      handler.NewBrandHandler(services.Brand),
		typeHandler:       handler.NewTypeHandler(services.Type),
		brandTypeHandler:  handler.NewBrandTypeHandler(services.BrandType),
		productHandler:    handler.NewProductHandler(services.Product),
		cartHandler:       handler.NewCartHandler(services.Cart),
		orderHandler:      handler.NewOrderHandler(services.Order, services.Payment),
		adminOrderHandler: handler.NewAdminOrderHandler(services.Order),
		paypalHandler:     handler.NewPaypalHandler(services.Payment),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	requireAuth := authmw.AuthMiddleware(s.tokens)
	requireAdmin := authmw.RequireRole(model.RoleAdmin)

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.userHandler.Register)
	authGroup.POST("/login", s.userHandler.Login)
	authGroup.POST("/refresh", s.userHandler.Refresh)
	authGroup.POST("/logout", s.userHandler.Logout, requireAuth)
	authGroup.GET("/profile", s.userHandler.GetProfile, requireAuth)
	authGroup.PATCH("/profile", s.userHandler.UpdateProfile, requireAuth)
	authGroup.POST("/change-password", s.userHandler.ChangePassword, requireAuth)

	// -------- catalog --------
	brands := api.Group("/brands")
	brands.GET("", s.brandHandler.ListBrands)
	brands.GET("/:id", s.brandHandler.GetBrand)
	brands.POST("", s.brandHandler.CreateBrand, requireAuth, requireAdmin)
	brands.PATCH("/:id", s.brandHandler.RenameBrand, requireAuth, requireAdmin)
	brands.DELETE("/:id", s.brandHandler.DeleteBrand, requireAuth, requireAdmin)

	types := api.Group("/types")
	types.GET("", s.typeHandler.ListTypes)
	types.GET("/:id", s.typeHandler.GetType)
	types.POST("", s.typeHandler.CreateType, requireAuth, requireAdmin)
	types.PATCH("/:id", s.typeHandler.RenameType, requireAuth, requireAdmin)
	types.DELETE("/:id", s.typeHandler.DeleteType, requireAuth, requireAdmin)

	brandTypes := api.Group("/brand-types")
	brandTypes.GET("", s.brandTypeHandler.ListBrandTypes)
	brandTypes.GET("/:id", s.brandTypeHandler.GetBrandType)
	brandTypes.GET("/brand/:brandId", s.brandTypeHandler.ListByBrand)
	brandTypes.GET("/type/:typeId", s.brandTypeHandler.ListByType)
	brandTypes.POST("", s.brandTypeHandler.CreateBrandType, requireAuth, requireAdmin)
	brandTypes.PATCH("/:id", s.brandTypeHandler.UpdateBrandType, requireAuth, requireAdmin)
	brandTypes.DELETE("/:id", s.brandTypeHandler.DeleteBrandType, requireAuth, requireAdmin)

	products := api.Group("/products")
	products.GET("", s.productHandler.ListProducts)
	products.GET("/:id", s.productHandler.GetProduct)
	products.GET("/:id/info", s.productHandler.ListInfo)
	products.POST("", s.productHandler.CreateProduct, requireAuth, requireAdmin)
	products.PATCH("/:id", s.productHandler.UpdateProduct, requireAuth, requireAdmin)
	products.DELETE("/:id", s.productHandler.DeleteProduct, requireAuth, requireAdmin)
	products.POST("/:id/upload-image", s.productHandler.UploadImage, requireAuth, requireAdmin)
	products.POST("/:id/info", s.productHandler.AddInfo, requireAuth, requireAdmin)
	products.PATCH("/info/:infoId", s.productHandler.UpdateInfo, requireAuth, requireAdmin)
	products.DELETE("/info/:infoId", s.productHandler.DeleteInfo, requireAuth, requireAdmin)

	// -------- cart --------
	cart := api.Group("/cart", requireAuth)
	cart.POST("", s.cartHandler.AddToCart)
	cart.GET("", s.cartHandler.GetCart)
	cart.PATCH("/:id", s.cartHandler.UpdateItem)
	cart.DELETE("/:id", s.cartHandler.RemoveItem)
	cart.DELETE("", s.cartHandler.ClearCart)

	// -------- orders --------
	orders := api.Group("/orders", requireAuth)
	orders.POST("", s.orderHandler.CreateOrder)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.PATCH("/:id", s.orderHandler.UpdateOrder)
	orders.DELETE("/:id", s.orderHandler.CancelOrder)
	orders.POST("/:id/pay", s.orderHandler.PayOrder)
	orders.POST("/:id/paypal", s.orderHandler.StartPaypalCheckout)

	// -------- paypal callbacks --------
	paypal := api.Group("/paypal")
	paypal.GET("/success", s.paypalHandler.HandleSuccess)

	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.GET("/orders", s.adminOrderHandler.ListOrders)
	admin.GET("/orders/export", s.adminOrderHandler.ExportOrders)
	admin.GET("/orders/:id", s.adminOrderHandler.GetOrder)
	admin.PATCH("/orders/:id", s.adminOrderHandler.UpdateOrder)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindInvalidArgument: http.StatusBadRequest,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindUnauthorized:    http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
	apperr.KindUnavailable:     http.StatusServiceUnavailable,
}

// handleError renders apperr kinds and echo errors as dto.ErrorResponse.
// Anything untyped becomes a 500 without leaking the cause.
func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := dto.ErrorResponse{Error: apperr.KindInternal.String(), Message: "internal server error"}

	var httpErr *echo.HTTPError
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal:
		status = kindStatus[appErr.Kind]
		resp = dto.ErrorResponse{Error: appErr.Kind.String(), Message: appErr.Message}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		resp = dto.ErrorResponse{
			Error:   strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
			Message: fmt.Sprint(httpErr.Message),
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		slog.Error("write error response", "error", err)
	}
}
