package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestDeliveryFee(t *testing.T) {
	fee, err := deliveryFee(newContext("/api/cart"))
	require.NoError(t, err)
	assert.True(t, fee.IsZero())

	fee, err = deliveryFee(newContext("/api/cart?deliveryFee=4.99"))
	require.NoError(t, err)
	assert.Equal(t, "4.99", fee.String())

	for _, bad := range []string{"-1", "free"} {
		_, err := deliveryFee(newContext("/api/cart?deliveryFee=" + bad))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr, bad)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestIDParam(t *testing.T) {
	c := newContext("/")
	c.SetParamNames("id")

	c.SetParamValues("12")
	id, err := idParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		c.SetParamValues(bad)
		_, err := idParam(c, "id")
		assert.Error(t, err, bad)
	}
}

func TestCurrentUserID(t *testing.T) {
	c := newContext("/")
	_, err := currentUserID(c)
	assert.Error(t, err)

	c.Set("user_id", uint(5))
	id, err := currentUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)
}

func TestParseProductQuery(t *testing.T) {
	q, err := parseProductQuery(newContext("/api/products?brandId=2&minPrice=10.5&page=3&limit=20&sortBy=price&sortOrder=ASC&search=tee"))
	require.NoError(t, err)

	require.NotNil(t, q.BrandID)
	assert.Equal(t, uint(2), *q.BrandID)
	assert.Nil(t, q.TypeID)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, "10.5", q.MinPrice.String())
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, "price", q.SortBy)
	assert.Equal(t, "ASC", q.SortOrder)
	assert.Equal(t, "tee", q.Search)

	_, err = parseProductQuery(newContext("/api/products?page=two"))
	assert.Error(t, err)
}
