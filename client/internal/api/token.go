package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jdenly/basiq-api/client/internal/types"
)

// GetAccessToken exchanges a pre-encoded API key for a server access token.
// The version header is always sent on this endpoint.
func GetAccessToken(ctx context.Context, rc *resty.Client, apiKey, version string) (*types.AccessToken, error) {
	req := rc.R().
		SetHeader("Authorization", "Basic "+apiKey).
		SetHeader("Accept", "application/json").
		SetHeader(VersionHeader, version).
		SetFormData(map[string]string{"scope": types.TokenScope})

	resp, err := execute(ctx, OpGetAccessToken, req, http.MethodPost, "/token", http.StatusOK)
	if err != nil {
		return nil, err
	}
	tok, err := decode[types.AccessToken](OpGetAccessToken, resp)
	if err != nil {
		return nil, err
	}
	tok.ObtainedAt = time.Now()
	return tok, nil
}
