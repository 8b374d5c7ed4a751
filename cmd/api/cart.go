package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shop/internal/domain/carts"
	"shop/internal/domain/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// emptyCartView is what an untouched cart looks like to the client.
func emptyCartView() *carts.CartView {
	return &carts.CartView{Items: []carts.CartLine{}}
}

func (app *application) cartView(ctx context.Context, userID int64) (*carts.CartView, error) {
	view, err := app.store.Sales.Carts.GetView(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return emptyCartView(), nil
	}
	return view, nil
}

// GetCart godoc
//
//	@Summary		Get the current user's cart
//	@Tags			Store-Cart
//	@Produce		json
//	@Success		200	{object}	carts.CartView	"Cart retrieved successfully"
//	@Failure		401	{object}	error			"Unauthorized"
//	@Failure		500	{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/cart [get]
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	view, err := app.cartView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

// POST /v1/store/cart  {product_id, qty, attributes}
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	var in struct {
		ProductID  int64          `json:"product_id"`
		Qty        int            `json:"qty"`
		Attributes map[string]any `json:"attributes"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if in.ProductID <= 0 || in.Qty <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("product_id and qty are required"))
		return
	}

	if err := app.store.Sales.Carts.AddItem(ctx, user.ID, in.ProductID, in.Qty, in.Attributes); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	view, err := app.cartView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, view)
}

// PATCH /v1/store/cart/items/{itemID}
func (app *application) updateCartItemQtyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	itemStr := chi.URLParam(r, "itemID")
	itemID, err := strconv.ParseInt(itemStr, 10, 64)
	if err != nil || itemID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid itemID"))
		return
	}

	var in struct {
		Qty int `json:"qty"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if in.Qty <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("qty must be > 0"))
		return
	}

	if err := app.store.Sales.Carts.UpdateItemQty(ctx, user.ID, itemID, in.Qty); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	view, err := app.cartView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

// DELETE /v1/store/cart/items/{itemID}
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	itemStr := chi.URLParam(r, "itemID")
	itemID, err := strconv.ParseInt(itemStr, 10, 64)
	if err != nil || itemID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid itemID"))
		return
	}

	if err := app.store.Sales.Carts.RemoveItem(ctx, user.ID, itemID); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	view, err := app.cartView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}

// DELETE /v1/store/cart
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	if err := app.store.Sales.Carts.Clear(ctx, user.ID); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, emptyCartView())
}

// MergeCart godoc
//
//	@Summary		Merge a guest cart into the user's cart
//	@Description	Accumulates guest cart lines into the authenticated user's cart. An optional merge_key deduplicates retries of the same merge.
//	@Tags			Store-Cart
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	carts.CartView	"Merged cart"
//	@Failure		400	{object}	error			"Bad Request"
//	@Failure		401	{object}	error			"Unauthorized"
//	@Failure		500	{object}	error			"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/cart/merge [post]
func (app *application) mergeCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	var in struct {
		MergeKey *string           `json:"merge_key"`
		Items    []carts.GuestItem `json:"items"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var key *uuid.UUID
	if in.MergeKey != nil {
		parsed, err := uuid.Parse(*in.MergeKey)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid merge_key"))
			return
		}
		key = &parsed
	}

	err := app.salesTx(ctx, func(s *storage.SalesTx) error {
		return s.Carts.MergeGuestItems(ctx, user.ID, key, in.Items)
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	view, err := app.cartView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, view)
}
