package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shop/internal/domain/addresses"

	"github.com/go-chi/chi/v5"
)

type CreateAddressPayload struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Line1      string  `json:"line1" validate:"required,max=255"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=255"`
	City       string  `json:"city" validate:"required,max=100"`
	State      string  `json:"state" validate:"required,max=100"`
	PostalCode string  `json:"postal_code" validate:"required,max=20"`
	Country    string  `json:"country" validate:"required,max=100"`
	Phone      string  `json:"phone" validate:"required,max=30"`
	IsDefault  bool    `json:"is_default"`
}

// CreateAddress godoc
//
//	@Summary		Add an address to the user's address book
//	@Tags			Store-Addresses
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateAddressPayload	true	"Address"
//	@Success		201		{object}	addresses.Address
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/store/addresses [post]
func (app *application) createAddressHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	var payload CreateAddressPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	addr := &addresses.Address{
		UserID:     user.ID,
		Name:       payload.Name,
		Line1:      payload.Line1,
		Line2:      payload.Line2,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
		Phone:      payload.Phone,
		IsDefault:  payload.IsDefault,
	}

	if err := app.store.Addresses.Create(ctx, addr); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, addr)
}

// GET /v1/store/addresses
func (app *application) listAddressesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	list, err := app.store.Addresses.ListByUser(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, list)
}

// DELETE /v1/store/addresses/{addressID}
func (app *application) deleteAddressHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user := getUserFromContext(r)

	idStr := chi.URLParam(r, "addressID")
	addressID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || addressID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid addressID"))
		return
	}

	if err := app.store.Addresses.Delete(ctx, user.ID, addressID); err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "address deleted"})
}
