package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop/internal/domain/orders"
	"shop/internal/params"

	"github.com/go-chi/chi/v5"
)

// AdminOrderListResponse is the payload inside the standard envelope { "data": ... }.
type AdminOrderListResponse struct {
	Orders     []orders.Order    `json:"orders"`
	Pagination params.Pagination `json:"pagination"`
	Status     string            `json:"status"` // applied filter (echoed back)
}

// AdminUpdateOrderStatusRequest is the PATCH body.
type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" example:"shipped"`
}

// AdminMarkDeliveredRequest is the PUT body.
type AdminMarkDeliveredRequest struct {
	TrackingNumber *string `json:"tracking_number,omitempty" example:"1Z999AA10123456784"`
}

// adminListOrdersHandler godoc
//
//	@Summary		List orders (admin)
//	@Description	List all orders for the admin dashboard. Supports optional status filter and pagination.
//	@Tags			Admin-Orders
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(pending,processing,shipped,delivered,cancelled)
//	@Param			page	query		int		false	"Page number (default: 1)"
//	@Param			limit	query		int		false	"Items per page (default: 15, max: 30)"
//	@Success		200		{object}	AdminOrderListResponse
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/admin/orders [get]
//	@Security		ApiKeyAuth
func (app *application) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	status, err := normalizeOrderStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	p := params.ParsePagination(r.URL.Query())

	ordersList, total, err := app.store.Sales.Orders.ListAll(ctx, status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"orders":     ordersList,
		"pagination": p,
		"status":     status,
	})
}

// adminGetOrderHandler godoc
//
//	@Summary		Get order detail (admin)
//	@Description	Get a single order with its line items for the admin dashboard.
//	@Tags			Admin-Orders
//	@Produce		json
//	@Param			orderID	path		int64	true	"Order ID"
//	@Success		200		{object}	orders.OrderDetail
//	@Failure		400		{object}	error	"Bad Request: invalid orderID"
//	@Failure		404		{object}	error	"Not Found: order not found"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/admin/orders/{orderID} [get]
//	@Security		ApiKeyAuth
func (app *application) adminGetOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid orderID"))
		return
	}

	detail, err := app.store.Sales.Orders.GetDetail(ctx, orderID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, detail)
}

// adminUpdateOrderStatusHandler godoc
//
//	@Summary		Update order status (admin)
//	@Description	Moves an order to a new status. Delivered and cancelled orders are final and reject any further change.
//	@Tags			Admin-Orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		int64							true	"Order ID"
//	@Param			body	body		AdminUpdateOrderStatusRequest	true	"Status update payload"
//	@Success		200		{object}	orders.Order
//	@Failure		400		{object}	error	"Bad Request: invalid payload/status"
//	@Failure		404		{object}	error	"Not Found: order not found"
//	@Failure		409		{object}	error	"Conflict: order is in a terminal state"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/admin/orders/{orderID}/status [patch]
//	@Security		ApiKeyAuth
func (app *application) adminUpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid orderID"))
		return
	}

	var in AdminUpdateOrderStatusRequest
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status, err := orders.ParseStatus(strings.TrimSpace(strings.ToLower(in.Status)))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.store.Sales.Orders.SetStatus(ctx, orderID, status)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, order)
}

// adminMarkDeliveredHandler godoc
//
//	@Summary		Mark order delivered (admin)
//	@Description	Completes fulfillment for an order, optionally attaching a tracking number. Fails if the order is already delivered or cancelled.
//	@Tags			Admin-Orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		int64						true	"Order ID"
//	@Param			body	body		AdminMarkDeliveredRequest	false	"Delivery payload"
//	@Success		200		{object}	orders.Order
//	@Failure		400		{object}	error	"Bad Request: invalid orderID"
//	@Failure		404		{object}	error	"Not Found: order not found"
//	@Failure		409		{object}	error	"Conflict: order is in a terminal state"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Router			/admin/orders/{orderID}/deliver [put]
//	@Security		ApiKeyAuth
func (app *application) adminMarkDeliveredHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || orderID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid orderID"))
		return
	}

	var in AdminMarkDeliveredRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &in); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	order, err := app.store.Sales.Orders.MarkDelivered(ctx, orderID, in.TrackingNumber)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, order)
}
