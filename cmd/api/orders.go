package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop/internal/domain/errs"
	"shop/internal/domain/orders"
	"shop/internal/domain/pricing"
	"shop/internal/domain/storage"
	"shop/internal/mailer"
	"shop/internal/params"

	"github.com/go-chi/chi/v5"
)

func (app *application) priceConfig() pricing.Config {
	return pricing.Config{
		TaxRate:                    app.config.pricing.taxRate,
		FreeShippingThresholdCents: app.config.pricing.freeShippingThresholdCents,
		FlatShippingFeeCents:       app.config.pricing.flatShippingFeeCents,
	}
}

// CheckoutQuote godoc
//
//	@Summary		Price the current cart
//	@Description	Returns items total, tax, shipping and grand total for the cart as it stands. Does not reserve stock or place an order.
//	@Tags			Store-Checkout
//	@Produce		json
//	@Success		200	{object}	pricing.Totals
//	@Failure		401	{object}	error	"Unauthorized"
//	@Failure		422	{object}	error	"Cart is empty"
//	@Failure		500	{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/checkout/quote [get]
func (app *application) checkoutQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	view, err := app.store.Sales.Carts.GetView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if view == nil || len(view.Items) == 0 {
		app.domainErrorResponse(w, r, errs.ErrEmptyCart)
		return
	}

	totals := pricing.Quote(view.ItemsTotalCents, app.priceConfig())

	app.jsonResponse(w, http.StatusOK, totals)
}

type PlaceOrderPayload struct {
	ShippingAddressID int64  `json:"shipping_address_id" validate:"required,gt=0"`
	BillingAddressID  int64  `json:"billing_address_id" validate:"required,gt=0"`
	PaymentMethod     string `json:"payment_method" validate:"required,max=50"`
}

// PlaceOrder godoc
//
//	@Summary		Place an order from the current cart
//	@Description	Snapshots the cart, reserves stock, prices the order and persists it atomically. The cart is cleared after the order commits.
//	@Tags			Store-Orders
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		PlaceOrderPayload	true	"Checkout payload"
//	@Success		201		{object}	orders.Order		"Order placed"
//	@Failure		400		{object}	error				"Bad Request"
//	@Failure		401		{object}	error				"Unauthorized"
//	@Failure		404		{object}	error				"Address or product not found"
//	@Failure		409		{object}	error				"Insufficient stock"
//	@Failure		422		{object}	error				"Cart is empty"
//	@Failure		500		{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/orders [post]
func (app *application) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	var payload PlaceOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var order *orders.Order
	err := app.salesTx(ctx, func(s *storage.SalesTx) error {
		var txErr error
		order, txErr = s.Orders.CreateFromCart(ctx, user.ID, payload.ShippingAddressID, payload.BillingAddressID, payload.PaymentMethod)
		return txErr
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	// The order is committed; a failed cart clear must not undo it. The
	// client gets the order either way, at worst with a stale cart.
	if err := app.store.Sales.Carts.Clear(ctx, user.ID); err != nil {
		app.logger.Warnw("order placed but cart not cleared",
			"order_id", order.ID, "user_id", user.ID, "error", err.Error())
	}

	app.sendOrderConfirmation(user.Name, user.Email, order)

	app.jsonResponse(w, http.StatusCreated, order)
}

func formatCents(c int64) string {
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}

// sendOrderConfirmation delivers the confirmation email in the background.
// Delivery failures are logged and never surfaced to the checkout response.
func (app *application) sendOrderConfirmation(username, email string, order *orders.Order) {
	vars := struct {
		Username    string
		OrderNumber string
		PublicRef   string
		ItemsTotal  string
		Tax         string
		Shipping    string
		GrandTotal  string
	}{
		Username:    username,
		OrderNumber: order.OrderNumber,
		PublicRef:   order.PublicRef,
		ItemsTotal:  formatCents(order.ItemsTotalCents),
		Tax:         formatCents(order.TaxCents),
		Shipping:    formatCents(order.ShippingCents),
		GrandTotal:  formatCents(order.GrandTotalCents),
	}

	go func() {
		status, err := app.mailer.Send(mailer.OrderConfirmationTemplate, username, email, vars)
		if err != nil {
			app.logger.Errorw("error sending order confirmation email",
				"order_id", order.ID, "error", err.Error())
			return
		}
		app.logger.Infow("order confirmation email sent", "order_id", order.ID, "status", status)
	}()
}

func normalizeOrderStatusFilter(raw string) (string, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" || s == "all" {
		return "", nil // empty means "no filter"
	}

	if _, err := orders.ParseStatus(s); err != nil {
		return "", fmt.Errorf("invalid status %q", raw)
	}
	return s, nil
}

// ListMyOrders godoc
//
//	@Summary		List my orders
//	@Description	Returns a paginated list of orders for the authenticated user.
//	@Tags			Store-Orders
//	@Produce		json
//	@Param			status	query		string			false	"Filter by status"	Enums(pending,processing,shipped,delivered,cancelled)
//	@Param			page	query		int				false	"Page number (default: 1)"
//	@Param			limit	query		int				false	"Items per page (default: 15, max: 30)"
//	@Success		200		{object}	map[string]any	"orders list + pagination"
//	@Failure		401		{object}	error			"Unauthorized"
//	@Failure		500		{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/orders [get]
func (app *application) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	p := params.ParsePagination(r.URL.Query())

	status, err := normalizeOrderStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ordersList, total, err := app.store.Sales.Orders.ListByUser(ctx, user.ID, status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"filters": map[string]any{
			"status": status,
		},
		"orders":     ordersList,
		"pagination": p,
	})
}

// GetMyOrder godoc
//
//	@Summary		Get my order detail
//	@Description	Returns order detail (order + items) for the authenticated user. Only returns the order if it belongs to the user.
//	@Tags			Store-Orders
//	@Produce		json
//	@Param			orderID	path		int					true	"Order ID"	minimum(1)
//	@Success		200		{object}	orders.OrderDetail	"order detail"
//	@Failure		400		{object}	error				"Bad Request: invalid orderID"
//	@Failure		401		{object}	error				"Unauthorized"
//	@Failure		404		{object}	error				"Order not found"
//	@Failure		500		{object}	error				"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/orders/{orderID} [get]
func (app *application) getMyOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	idStr := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid orderID"))
		return
	}

	detail, err := app.store.Sales.Orders.GetDetailForUser(ctx, user.ID, orderID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

// PayOrder godoc
//
//	@Summary		Record payment for an order
//	@Description	Records the gateway confirmation for the order. Re-submitting for an already paid order is a no-op.
//	@Tags			Store-Orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		int						true	"Order ID"	minimum(1)
//	@Param			payload	body		orders.PaymentResult	true	"Gateway confirmation"
//	@Success		200		{object}	orders.Order			"order with payment recorded"
//	@Failure		400		{object}	error					"Bad Request"
//	@Failure		401		{object}	error					"Unauthorized"
//	@Failure		403		{object}	error					"Order belongs to another user"
//	@Failure		404		{object}	error					"Order not found"
//	@Failure		500		{object}	error					"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/orders/{orderID}/pay [put]
func (app *application) payOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	idStr := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid orderID"))
		return
	}

	var result orders.PaymentResult
	if err := readJSON(w, r, &result); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Sales.Orders.GetByID(ctx, orderID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}
	if existing.UserID != user.ID {
		app.forbiddenResponse(w, r, fmt.Errorf("order %d belongs to another user", orderID))
		return
	}

	order, err := app.store.Sales.Orders.MarkPaid(ctx, orderID, result)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, order)
}
