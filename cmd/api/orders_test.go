package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop/internal/domain/errs"
	"shop/internal/domain/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder() *orders.Order {
	return &orders.Order{
		ID:              7,
		UserID:          42,
		OrderNumber:     "SHOP-2609-A7K2QM3X",
		PublicRef:       "x9KqR",
		Status:          orders.StatusPending,
		ItemsTotalCents: 15000,
		TaxCents:        1500,
		ShippingCents:   0,
		GrandTotalCents: 16500,
	}
}

func TestPlaceOrderHandler(t *testing.T) {
	validBody := `{"shipping_address_id": 1, "billing_address_id": 1, "payment_method": "card"}`

	tests := []struct {
		name        string
		body        string
		createErr   error
		clearErr    error
		wantStatus  int
		wantCleared bool
	}{
		{
			name:        "order placed and cart cleared",
			body:        validBody,
			wantStatus:  http.StatusCreated,
			wantCleared: true,
		},
		{
			name:       "missing payment method",
			body:       `{"shipping_address_id": 1, "billing_address_id": 1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty cart keeps cart untouched",
			body:       validBody,
			createErr:  fmt.Errorf("creating order: %w", errs.ErrEmptyCart),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "out of stock keeps cart untouched",
			body:       validBody,
			createErr:  &errs.InsufficientStockError{ProductID: 10, ProductName: "Keyboard", Requested: 3, Available: 1},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "failed cart clear does not undo the order",
			body:       validBody,
			clearErr:   fmt.Errorf("connection reset"),
			wantStatus: http.StatusCreated,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cartStore := &MockCartStore{ClearErr: tc.clearErr}
			orderStore := &MockOrderStore{Order: placedOrder(), CreateErr: tc.createErr}
			app := newTestApplication(cartStore, orderStore)

			r := httptest.NewRequest(http.MethodPost, "/v1/store/orders", strings.NewReader(tc.body))
			r = requestWithUser(r, testUser())
			rr := httptest.NewRecorder()
			app.placeOrderHandler(rr, r)

			require.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantCleared, cartStore.Cleared)

			if tc.wantStatus == http.StatusCreated {
				var resp struct {
					Data orders.Order `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.EqualValues(t, 7, resp.Data.ID)
				assert.EqualValues(t, 16500, resp.Data.GrandTotalCents)
			}
		})
	}
}
