package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop/internal/domain/carts"
	"shop/internal/domain/errs"
	"shop/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *users.User {
	return &users.User{ID: 42, Name: "Jamie", Email: "jamie@example.com"}
}

func TestGetCartHandler_EmptyCart(t *testing.T) {
	cartStore := &MockCartStore{View: nil}
	app := newTestApplication(cartStore, &MockOrderStore{})

	r := requestWithUser(httptest.NewRequest(http.MethodGet, "/v1/store/cart", nil), testUser())
	rr := httptest.NewRecorder()
	app.getCartHandler(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data carts.CartView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Empty(t, resp.Data.Items)
	assert.Zero(t, resp.Data.ItemsTotalCents)
}

func TestGetCartHandler_WithItems(t *testing.T) {
	cartStore := &MockCartStore{View: &carts.CartView{
		Items: []carts.CartLine{
			{ItemID: 1, ProductID: 10, ProductName: "Keyboard", Quantity: 2, UnitPriceCents: 4500, LineTotalCents: 9000},
		},
		TotalItems:      2,
		ItemsTotalCents: 9000,
	}}
	app := newTestApplication(cartStore, &MockOrderStore{})

	r := requestWithUser(httptest.NewRequest(http.MethodGet, "/v1/store/cart", nil), testUser())
	rr := httptest.NewRecorder()
	app.getCartHandler(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data carts.CartView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data.Items, 1)
	assert.EqualValues(t, 9000, resp.Data.ItemsTotalCents)
}

func TestAddCartItemHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
	}{
		{
			name:       "valid add",
			body:       `{"product_id": 10, "qty": 2, "attributes": {"color": "black"}}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing product",
			body:       `{"qty": 2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero qty",
			body:       `{"product_id": 10, "qty": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field rejected",
			body:       `{"product_id": 10, "qty": 1, "bogus": true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "product not found",
			body:       `{"product_id": 99, "qty": 1}`,
			storeErr:   errs.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid quantity from store",
			body:       `{"product_id": 10, "qty": 5}`,
			storeErr:   errs.ErrValidation,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cartStore := &MockCartStore{View: &carts.CartView{}, AddErr: tt.storeErr}
			app := newTestApplication(cartStore, &MockOrderStore{})

			r := httptest.NewRequest(http.MethodPost, "/v1/store/cart", strings.NewReader(tt.body))
			r = requestWithUser(r, testUser())
			rr := httptest.NewRecorder()
			app.addCartItemHandler(rr, r)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestClearCartHandler(t *testing.T) {
	cartStore := &MockCartStore{View: &carts.CartView{}}
	app := newTestApplication(cartStore, &MockOrderStore{})

	r := requestWithUser(httptest.NewRequest(http.MethodDelete, "/v1/store/cart", nil), testUser())
	rr := httptest.NewRecorder()
	app.clearCartHandler(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, cartStore.Cleared)
}

func TestClearCartHandler_NoCart(t *testing.T) {
	cartStore := &MockCartStore{ClearErr: errs.ErrNotFound}
	app := newTestApplication(cartStore, &MockOrderStore{})

	r := requestWithUser(httptest.NewRequest(http.MethodDelete, "/v1/store/cart", nil), testUser())
	rr := httptest.NewRecorder()
	app.clearCartHandler(rr, r)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, cartStore.Cleared)
}

func TestMergeCartHandler_InvalidMergeKey(t *testing.T) {
	cartStore := &MockCartStore{View: &carts.CartView{}}
	app := newTestApplication(cartStore, &MockOrderStore{})

	body := `{"merge_key": "not-a-uuid", "items": [{"product_id": 1, "quantity": 1}]}`
	r := httptest.NewRequest(http.MethodPost, "/v1/store/cart/merge", strings.NewReader(body))
	r = requestWithUser(r, testUser())
	rr := httptest.NewRecorder()
	app.mergeCartHandler(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, cartStore.MergedItems)
}

func TestCheckoutQuoteHandler(t *testing.T) {
	t.Run("empty cart is unprocessable", func(t *testing.T) {
		app := newTestApplication(&MockCartStore{View: nil}, &MockOrderStore{})

		r := requestWithUser(httptest.NewRequest(http.MethodGet, "/v1/store/checkout/quote", nil), testUser())
		rr := httptest.NewRecorder()
		app.checkoutQuoteHandler(rr, r)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("prices the cart", func(t *testing.T) {
		cartStore := &MockCartStore{View: &carts.CartView{
			Items:           []carts.CartLine{{ItemID: 1, ProductID: 10, Quantity: 1, UnitPriceCents: 15000, LineTotalCents: 15000}},
			ItemsTotalCents: 15000,
		}}
		app := newTestApplication(cartStore, &MockOrderStore{})

		r := requestWithUser(httptest.NewRequest(http.MethodGet, "/v1/store/checkout/quote", nil), testUser())
		rr := httptest.NewRecorder()
		app.checkoutQuoteHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data struct {
				ItemsTotalCents int64 `json:"items_total_cents"`
				TaxCents        int64 `json:"tax_cents"`
				ShippingCents   int64 `json:"shipping_cents"`
				GrandTotalCents int64 `json:"grand_total_cents"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.EqualValues(t, 15000, resp.Data.ItemsTotalCents)
		assert.EqualValues(t, 1500, resp.Data.TaxCents)
		assert.EqualValues(t, 0, resp.Data.ShippingCents, "orders above the threshold ship free")
		assert.EqualValues(t, 16500, resp.Data.GrandTotalCents)
	})
}
