package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop/internal/domain/errs"
	"shop/internal/domain/orders"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminUpdateOrderStatusHandler(t *testing.T) {
	tests := []struct {
		name       string
		orderID    string
		body       string
		storeErr   error
		wantStatus int
		wantCalls  []orders.Status
	}{
		{
			name:       "ship an order",
			orderID:    "5",
			body:       `{"status": "shipped"}`,
			wantStatus: http.StatusOK,
			wantCalls:  []orders.Status{orders.StatusShipped},
		},
		{
			name:       "status is case-insensitive",
			orderID:    "5",
			body:       `{"status": "Cancelled"}`,
			wantStatus: http.StatusOK,
			wantCalls:  []orders.Status{orders.StatusCancelled},
		},
		{
			name:       "unknown status",
			orderID:    "5",
			body:       `{"status": "refunded"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid order id",
			orderID:    "abc",
			body:       `{"status": "shipped"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing order",
			orderID:    "5",
			body:       `{"status": "shipped"}`,
			storeErr:   fmt.Errorf("order 5: %w", errs.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "terminal order rejects transition",
			orderID:    "5",
			body:       `{"status": "pending"}`,
			storeErr:   fmt.Errorf("order 5 is delivered, cannot move to pending: %w", errs.ErrInvalidTransition),
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderStore := &MockOrderStore{
				Order: &orders.Order{ID: 5, Status: orders.StatusShipped},
				Err:   tt.storeErr,
			}
			app := newTestApplication(&MockCartStore{}, orderStore)

			r := httptest.NewRequest(http.MethodPatch, "/v1/admin/orders/5/status", strings.NewReader(tt.body))
			r = withURLParam(r, "orderID", tt.orderID)
			rr := httptest.NewRecorder()
			app.adminUpdateOrderStatusHandler(rr, r)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalls, orderStore.SetStatusCalls)
		})
	}
}

func TestAdminMarkDeliveredHandler(t *testing.T) {
	t.Run("marks delivered with tracking number", func(t *testing.T) {
		orderStore := &MockOrderStore{Order: &orders.Order{ID: 9, Status: orders.StatusDelivered, IsDelivered: true}}
		app := newTestApplication(&MockCartStore{}, orderStore)

		body := `{"tracking_number": "1Z999AA10123456784"}`
		r := httptest.NewRequest(http.MethodPut, "/v1/admin/orders/9/deliver", strings.NewReader(body))
		r = withURLParam(r, "orderID", "9")
		rr := httptest.NewRecorder()
		app.adminMarkDeliveredHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, orderStore.DeliveredCalls)
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		orderStore := &MockOrderStore{Order: &orders.Order{ID: 9, Status: orders.StatusDelivered, IsDelivered: true}}
		app := newTestApplication(&MockCartStore{}, orderStore)

		r := httptest.NewRequest(http.MethodPut, "/v1/admin/orders/9/deliver", nil)
		r = withURLParam(r, "orderID", "9")
		rr := httptest.NewRecorder()
		app.adminMarkDeliveredHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, orderStore.DeliveredCalls)
	})

	t.Run("second delivery is a conflict", func(t *testing.T) {
		orderStore := &MockOrderStore{
			Err: fmt.Errorf("order 9 is delivered, cannot move to delivered: %w", errs.ErrInvalidTransition),
		}
		app := newTestApplication(&MockCartStore{}, orderStore)

		r := httptest.NewRequest(http.MethodPut, "/v1/admin/orders/9/deliver", nil)
		r = withURLParam(r, "orderID", "9")
		rr := httptest.NewRecorder()
		app.adminMarkDeliveredHandler(rr, r)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, 0, orderStore.DeliveredCalls)
	})
}

func TestGetMyOrderHandler(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		orderStore := &MockOrderStore{Err: fmt.Errorf("order 3: %w", errs.ErrNotFound)}
		app := newTestApplication(&MockCartStore{}, orderStore)

		r := httptest.NewRequest(http.MethodGet, "/v1/store/orders/3", nil)
		r = withURLParam(requestWithUser(r, testUser()), "orderID", "3")
		rr := httptest.NewRecorder()
		app.getMyOrderHandler(rr, r)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns detail", func(t *testing.T) {
		orderStore := &MockOrderStore{Detail: &orders.OrderDetail{
			Order: orders.Order{ID: 3, UserID: 42, Status: orders.StatusPending, GrandTotalCents: 16500},
			Items: []orders.OrderItem{{ID: 1, OrderID: 3, ProductName: "Keyboard", Quantity: 1, UnitPriceCents: 15000, TotalPriceCents: 15000}},
		}}
		app := newTestApplication(&MockCartStore{}, orderStore)

		r := httptest.NewRequest(http.MethodGet, "/v1/store/orders/3", nil)
		r = withURLParam(requestWithUser(r, testUser()), "orderID", "3")
		rr := httptest.NewRecorder()
		app.getMyOrderHandler(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestPayOrderHandler(t *testing.T) {
	t.Run("rejects another user's order", func(t *testing.T) {
		orderStore := &MockOrderStore{Order: &orders.Order{ID: 3, UserID: 7}}
		app := newTestApplication(&MockCartStore{}, orderStore)

		body := `{"id": "PAY-1", "status": "COMPLETED", "update_time": "2025-08-01T10:00:00Z", "email_address": "jamie@example.com"}`
		r := httptest.NewRequest(http.MethodPut, "/v1/store/orders/3/pay", strings.NewReader(body))
		r = withURLParam(requestWithUser(r, testUser()), "orderID", "3")
		rr := httptest.NewRecorder()
		app.payOrderHandler(rr, r)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, orderStore.MarkPaidCalls)
	})

	t.Run("records payment", func(t *testing.T) {
		orderStore := &MockOrderStore{Order: &orders.Order{ID: 3, UserID: 42}}
		app := newTestApplication(&MockCartStore{}, orderStore)

		body := `{"id": "PAY-1", "status": "COMPLETED", "update_time": "2025-08-01T10:00:00Z", "email_address": "jamie@example.com"}`
		r := httptest.NewRequest(http.MethodPut, "/v1/store/orders/3/pay", strings.NewReader(body))
		r = withURLParam(requestWithUser(r, testUser()), "orderID", "3")
		rr := httptest.NewRecorder()
		app.payOrderHandler(rr, r)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, orderStore.MarkPaidCalls, 1)
		assert.Equal(t, "PAY-1", orderStore.MarkPaidCalls[0].ID)
	})
}
