package main

import (
	"context"
	"net/http"

	"shop/internal/domain/carts"
	"shop/internal/domain/orders"
	"shop/internal/domain/storage"
	"shop/internal/domain/users"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockCartStore implements carts.Store for handler tests.
type MockCartStore struct {
	View    *carts.CartView
	ViewErr error

	AddErr    error
	UpdateErr error
	RemoveErr error
	ClearErr  error
	MergeErr  error

	Cleared     bool
	AddedItems  []carts.GuestItem
	MergedItems []carts.GuestItem
}

func (m *MockCartStore) AddItem(_ context.Context, _, productID int64, qty int, attrs map[string]any) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedItems = append(m.AddedItems, carts.GuestItem{ProductID: productID, Quantity: qty, Attributes: attrs})
	return nil
}

func (m *MockCartStore) UpdateItemQty(_ context.Context, _, _ int64, _ int) error {
	return m.UpdateErr
}

func (m *MockCartStore) RemoveItem(_ context.Context, _, _ int64) error {
	return m.RemoveErr
}

func (m *MockCartStore) Clear(_ context.Context, _ int64) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Cleared = true
	return nil
}

func (m *MockCartStore) MergeGuestItems(_ context.Context, _ int64, _ *uuid.UUID, items []carts.GuestItem) error {
	if m.MergeErr != nil {
		return m.MergeErr
	}
	m.MergedItems = append(m.MergedItems, items...)
	return nil
}

func (m *MockCartStore) GetView(_ context.Context, _ int64) (*carts.CartView, error) {
	return m.View, m.ViewErr
}

// MockOrderStore implements orders.Store for handler tests.
type MockOrderStore struct {
	Order     *orders.Order
	Detail    *orders.OrderDetail
	Orders    []orders.Order
	Total     int
	Err       error
	CreateErr error

	SetStatusCalls []orders.Status
	MarkPaidCalls  []orders.PaymentResult
	DeliveredCalls int
}

func (m *MockOrderStore) CreateFromCart(_ context.Context, _, _, _ int64, _ string) (*orders.Order, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Order, nil
}

func (m *MockOrderStore) GetByID(_ context.Context, _ int64) (*orders.Order, error) {
	return m.Order, m.Err
}

func (m *MockOrderStore) ListByUser(_ context.Context, _ int64, _ string, _, _ int) ([]orders.Order, int, error) {
	return m.Orders, m.Total, m.Err
}

func (m *MockOrderStore) GetDetailForUser(_ context.Context, _, _ int64) (*orders.OrderDetail, error) {
	return m.Detail, m.Err
}

func (m *MockOrderStore) MarkPaid(_ context.Context, _ int64, result orders.PaymentResult) (*orders.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.MarkPaidCalls = append(m.MarkPaidCalls, result)
	return m.Order, nil
}

func (m *MockOrderStore) SetStatus(_ context.Context, _ int64, status orders.Status) (*orders.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.SetStatusCalls = append(m.SetStatusCalls, status)
	return m.Order, nil
}

func (m *MockOrderStore) MarkDelivered(_ context.Context, _ int64, _ *string) (*orders.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.DeliveredCalls++
	return m.Order, nil
}

func (m *MockOrderStore) ListAll(_ context.Context, _ string, _, _ int) ([]orders.Order, int, error) {
	return m.Orders, m.Total, m.Err
}

func (m *MockOrderStore) GetDetail(_ context.Context, _ int64) (*orders.OrderDetail, error) {
	return m.Detail, m.Err
}

// MockMailer implements mailer.Client; sends are recorded, never delivered.
type MockMailer struct {
	Sent int
}

func (m *MockMailer) Send(_, _, _ string, _ any) (int, error) {
	m.Sent++
	return 200, nil
}

func newTestApplication(cartStore *MockCartStore, orderStore *MockOrderStore) *application {
	salesTx := &storage.SalesTx{Carts: cartStore, Orders: orderStore}
	return &application{
		salesTx: func(_ context.Context, fn func(s *storage.SalesTx) error) error {
			return fn(salesTx)
		},
		mailer: &MockMailer{},
		config: config{
			pricing: pricingConfig{
				taxRate:                    0.10,
				freeShippingThresholdCents: 100_00,
				flatShippingFeeCents:       10_00,
			},
		},
		logger: zap.NewNop().Sugar(),
		store: &storage.Container{
			Sales: storage.Sales{
				Carts:  cartStore,
				Orders: orderStore,
			},
		},
	}
}

func requestWithUser(r *http.Request, user *users.User) *http.Request {
	ctx := context.WithValue(r.Context(), userCtx, user)
	return r.WithContext(ctx)
}
