package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/jdenly/basiq-api/client/internal/types"
)

// CreateConnection asks the API to link userID to an institution. The returned
// job completes out of band; see GetJob.
func CreateConnection(ctx context.Context, rc *resty.Client, token, userID string, req types.CreateConnectionRequest) (*types.Job, error) {
	r := bearer(rc, token).
		SetHeader("Content-Type", "application/json").
		SetPathParam("userId", userID).
		SetBody(req)

	resp, err := execute(ctx, OpCreateConnection, r, http.MethodPost, "/users/{userId}/connections",
		http.StatusOK, http.StatusCreated, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return decode[types.Job](OpCreateConnection, resp)
}

// GetJob retrieves the current state of a job.
func GetJob(ctx context.Context, rc *resty.Client, token, jobID string) (*types.Job, error) {
	r := bearer(rc, token).SetPathParam("jobId", jobID)
	resp, err := execute(ctx, OpGetJob, r, http.MethodGet, "/jobs/{jobId}", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[types.Job](OpGetJob, resp)
}
