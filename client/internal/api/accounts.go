package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/jdenly/basiq-api/client/internal/types"
)

// GetAccounts retrieves the accounts of a user. Accounts appear some time
// after a connection job is created; an empty list is not an error.
func GetAccounts(ctx context.Context, rc *resty.Client, token, userID string) (*types.AccountList, error) {
	r := bearer(rc, token).SetPathParam("userId", userID)
	resp, err := execute(ctx, OpGetAccounts, r, http.MethodGet, "/users/{userId}/accounts", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.AccountList](OpGetAccounts, resp)
}
