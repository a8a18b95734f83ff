package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopco-api/internal/auth"
	"shopco-api/internal/client"
	"shopco-api/internal/config"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
	"shopco-api/internal/service"
	"shopco-api/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ServerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler http.Handler
	product *model.Product
}

func (s *ServerTestSuite) SetupTest() {
	db, err := client.InitDBClient(config.Database{
		Driver:       "sqlite",
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s.db = db

	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:3000"},
		Auth: config.Auth{
			AccessSecret:  "access",
			RefreshSecret: "refresh",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		Storage: config.Storage{
			Dir:       s.T().TempDir(),
			URLPrefix: "/uploads/products",
			MaxBytes:  1024,
		},
	}

	store, err := storage.NewLocalImageStore(cfg.Storage.Dir, cfg.Storage.URLPrefix)
	s.Require().NoError(err)
	tokens := auth.NewTokenManager(cfg.Auth)

	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	typeRepo := repository.NewTypeRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	srv := NewServer(cfg, Services{
		User:      service.NewUserService(userRepo, tokens),
		Brand:     service.NewBrandService(brandRepo, productRepo, nil),
		Type:      service.NewTypeService(typeRepo, productRepo, nil),
		BrandType: service.NewBrandTypeService(repository.NewBrandTypeRepository(db), brandRepo, typeRepo),
		Product: service.NewProductService(
			productRepo, repository.NewProductInfoRepository(db),
			brandRepo, typeRepo,
			nil, store, cfg.Storage.MaxBytes,
		),
		Cart: service.NewCartService(db, cartRepo, productRepo),
		Order: service.NewOrderService(
			db, userRepo, cartRepo, orderRepo,
			repository.NewIdempotencyKeyRepository(db),
			nil, nil,
		),
		Payment: service.NewPaymentService(nil, nil, "", orderRepo, nil),
	}, tokens)
	s.handler = srv.Handler()

	brand := &model.Brand{Name: "Versace"}
	s.Require().NoError(db.Create(brand).Error)
	productType := &model.Type{Name: "T-shirts"}
	s.Require().NoError(db.Create(productType).Error)
	s.product = &model.Product{
		Name:     "Gradient Tee",
		Price:    decimal.NewFromInt(100),
		OldPrice: decimal.NewNullDecimal(decimal.NewFromInt(120)),
		BrandID:  brand.ID,
		TypeID:   productType.ID,
	}
	s.Require().NoError(db.Omit("Brand", "Type", "Info").Create(s.product).Error)
}

func (s *ServerTestSuite) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerTestSuite) register(email string) dto.AuthResponse {
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"password":    "hunter22",
		"first_name":  "Jane",
		"last_name":   "Doe",
		"street":      "1 Main St",
		"city":        "Springfield",
		"postal_code": "12345",
		"country":     "US",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var session dto.AuthResponse
	s.decode(rec, &session)
	return session
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *ServerTestSuite) TestRegister_SetsRefreshCookie() {
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "cookie@example.com", "password": "hunter22", "first_name": "C", "last_name": "K",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("refresh_token", cookies[0].Name)
	s.True(cookies[0].HttpOnly)
	s.Equal(3600, cookies[0].MaxAge)
}

func (s *ServerTestSuite) TestValidationErrorsAre400() {
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "not-an-email"})
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("bad_request", resp.Error)
	s.Contains(resp.Message, "Email")
}

func (s *ServerTestSuite) TestCartRequiresAuth() {
	rec := s.do(http.MethodGet, "/api/cart", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	var resp dto.ErrorResponse
	s.decode(rec, &resp)
	s.Equal("unauthorized", resp.Error)
}

func (s *ServerTestSuite) TestCartAndCheckoutFlow() {
	session := s.register("buyer@example.com")
	token := session.AccessToken

	rec := s.do(http.MethodPost, "/api/cart", token, map[string]any{
		"product_id": s.product.ID, "quantity": 2, "selected_size": "M",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/cart?deliveryFee=5", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var cart dto.CartResponse
	s.decode(rec, &cart)
	s.Require().Len(cart.Items, 1)
	s.Equal(240.0, cart.Summary.Subtotal)
	s.Equal(40.0, cart.Summary.Discount)
	s.Equal(int64(17), cart.Summary.DiscountPercentage)
	s.Equal(205.0, cart.Summary.Total)

	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/cart/%d", cart.Items[0].ID), token, map[string]int{"quantity": 150})
	s.Equal(http.StatusBadRequest, rec.Code)
	var errResp dto.ErrorResponse
	s.decode(rec, &errResp)
	s.Equal("invalid_argument", errResp.Error)
	s.Equal("maximum quantity is 99", errResp.Message)

	rec = s.do(http.MethodGet, "/api/cart?deliveryFee=-1", token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	order := map[string]string{"payment_method": "card"}
	rec = s.do(http.MethodPost, "/api/orders", token, order, "Idempotency-Key", "k-1")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var first dto.OrderResponse
	s.decode(rec, &first)
	s.Equal(200.0, first.Subtotal)
	s.Len(first.Items, 1)

	rec = s.do(http.MethodPost, "/api/orders", token, order, "Idempotency-Key", "k-1")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var replay dto.OrderResponse
	s.decode(rec, &replay)
	s.Equal(first.ID, replay.ID)

	rec = s.do(http.MethodPost, "/api/orders", token, order)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", first.ID), token, map[string]string{"nonce": "fake"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/paypal", first.ID), token, nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = s.do(http.MethodGet, "/api/paypal/success", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/orders/%d", first.ID), token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var cancelled dto.OrderResponse
	s.decode(rec, &cancelled)
	s.Equal("cancelled", cancelled.Status)
}

func (s *ServerTestSuite) TestOrdersOfOtherUsersAreNotFound() {
	owner := s.register("owner@example.com")
	intruder := s.register("intruder@example.com")

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/cart", owner.AccessToken, map[string]any{
		"product_id": s.product.ID, "quantity": 1, "selected_size": "L",
	}).Code)
	rec := s.do(http.MethodPost, "/api/orders", owner.AccessToken, map[string]string{"payment_method": "card"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var order dto.OrderResponse
	s.decode(rec, &order)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), intruder.AccessToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders/99999", owner.AccessToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders/abc", owner.AccessToken, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestAdminRoutes() {
	user := s.register("user@example.com")
	rec := s.do(http.MethodGet, "/api/admin/orders", user.AccessToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/brands", user.AccessToken, map[string]string{"name": "Gucci"})
	s.Equal(http.StatusForbidden, rec.Code)

	admin := s.register("admin@example.com")
	s.Require().NoError(s.db.Model(&model.User{}).Where("id = ?", admin.User.ID).Update("role", model.RoleAdmin).Error)
	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "hunter22"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var session dto.AuthResponse
	s.decode(rec, &session)

	rec = s.do(http.MethodPost, "/api/brands", session.AccessToken, map[string]string{"name": "Gucci"})
	s.Equal(http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/brands", session.AccessToken, map[string]string{"name": "Gucci"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/orders", session.AccessToken, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/orders/export", session.AccessToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Disposition"), "attachment; filename=")
	s.NotZero(rec.Body.Len())
}

func (s *ServerTestSuite) TestProductListing() {
	rec := s.do(http.MethodGet, "/api/products?sortBy=price&sortOrder=ASC&limit=5&search=tee", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var list dto.ProductListResponse
	s.decode(rec, &list)
	s.EqualValues(1, list.Total)
	s.Equal(5, list.Limit)

	rec = s.do(http.MethodGet, "/api/products?limit=500", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/products?brandId=x", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/products/%d", s.product.ID), "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var product dto.ProductResponse
	s.decode(rec, &product)
	s.Equal("Gradient Tee", product.Name)
	s.Require().NotNil(product.Brand)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
