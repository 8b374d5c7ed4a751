package main

import (
	"fmt"
	"net/http"

	"shop/internal/domain/users"
)

type userKey string

const userCtx userKey = "user"

func getUserFromContext(r *http.Request) *users.User {
	if user, ok := r.Context().Value(userCtx).(*users.User); ok {
		return user
	}
	return nil
}

// GetCurrentUser godoc
//
//	@Summary		Get the authenticated user
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/store/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("no authenticated user in context"))
		return
	}

	app.jsonResponse(w, http.StatusOK, user)
}
