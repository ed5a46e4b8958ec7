package api

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/go-resty/resty/v2"

	sdkerrors "github.com/jdenly/basiq-api/client/internal/errors"
)

// Operation names used in errors, logs and metrics.
const (
	OpGetAccessToken   = "get_access_token"
	OpListUsers        = "list_users"
	OpCreateUser       = "create_user"
	OpDeleteUser       = "delete_user"
	OpCreateConnection = "create_connection"
	OpGetJob           = "get_job"
	OpGetAccounts      = "get_accounts"
)

// VersionHeader carries the pinned API protocol version.
const VersionHeader = "basiq-version"

// bearer starts a request authorised with the given access token.
func bearer(rc *resty.Client, token string) *resty.Request {
	return rc.R().
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Accept", "application/json")
}

// execute sends req and turns transport failures and unexpected statuses
// into *APIError values. ok lists the statuses treated as success.
func execute(ctx context.Context, op string, req *resty.Request, method, path string, ok ...int) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		// The caller gave up; that is not a network failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, sdkerrors.NewNetworkError(op, err)
	}
	if !slices.Contains(ok, resp.StatusCode()) {
		return nil, sdkerrors.NewHTTPError(op, resp.StatusCode(), resp.Body())
	}
	return resp, nil
}

// decode unmarshals a success body into a fresh T.
func decode[T any](op string, resp *resty.Response) (*T, error) {
	var v T
	if err := json.Unmarshal(resp.Body(), &v); err != nil {
		return nil, sdkerrors.NewDecodeError(op, resp.StatusCode(), resp.Body(), err)
	}
	return &v, nil
}
