package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/jdenly/basiq-api/client/internal/types"
)

// ListUsers retrieves the users visible to the token.
func ListUsers(ctx context.Context, rc *resty.Client, token string) (*types.UserList, error) {
	resp, err := execute(ctx, OpListUsers, bearer(rc, token), http.MethodGet, "/users", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.UserList](OpListUsers, resp)
}

// CreateUser registers a new user. Client-side validation is left to the server.
func CreateUser(ctx context.Context, rc *resty.Client, token string, req types.CreateUserRequest) (*types.User, error) {
	r := bearer(rc, token).
		SetHeader("Content-Type", "application/json").
		SetBody(req)

	resp, err := execute(ctx, OpCreateUser, r, http.MethodPost, "/users", http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return decode[types.User](OpCreateUser, resp)
}

// DeleteUser removes a user by ID.
func DeleteUser(ctx context.Context, rc *resty.Client, token, userID string) error {
	r := bearer(rc, token).SetPathParam("userId", userID)
	_, err := execute(ctx, OpDeleteUser, r, http.MethodDelete, "/users/{userId}", http.StatusNoContent, http.StatusOK)
	return err
}
