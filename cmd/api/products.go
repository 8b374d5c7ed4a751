package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shop/internal/domain/products"
	"shop/internal/params"

	"github.com/go-chi/chi/v5"
)

// ListProducts godoc
//
//	@Summary		List products
//	@Tags			Products
//	@Produce		json
//	@Param			page	query		int				false	"Page number (default: 1)"
//	@Param			limit	query		int				false	"Items per page (default: 15, max: 30)"
//	@Success		200		{object}	map[string]any	"products + pagination"
//	@Failure		500		{object}	error			"Internal Server Error"
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Products.List(ctx, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"products":   list,
		"pagination": p,
	})
}

// GetProduct godoc
//
//	@Summary		Get a product
//	@Tags			Products
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	products.Product
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Router			/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "productID")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid productID"))
		return
	}

	product, err := app.store.Products.GetByID(ctx, productID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, product)
}

type CreateProductPayload struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description,omitempty"`
	Brand        *string `json:"brand,omitempty" validate:"omitempty,max=100"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	PriceCents   int64   `json:"price_cents" validate:"required,gt=0"`
	CountInStock int     `json:"count_in_stock" validate:"gte=0"`
}

// POST /v1/admin/products
func (app *application) adminCreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var payload CreateProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Products.Create(ctx, &products.Product{
		Name:         payload.Name,
		Description:  payload.Description,
		Brand:        payload.Brand,
		ImageURL:     payload.ImageURL,
		PriceCents:   payload.PriceCents,
		CountInStock: payload.CountInStock,
		IsActive:     true,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, product)
}

// PATCH /v1/admin/products/{productID}
func (app *application) adminUpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "productID")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid productID"))
		return
	}

	var patch products.Patch
	if err := readJSON(w, r, &patch); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Products.Update(ctx, productID, patch)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, product)
}
