package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkerrors "github.com/jdenly/basiq-api/client/internal/errors"
	"github.com/jdenly/basiq-api/client/internal/types"
)

func TestCreateConnection_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/users/u-1/connections" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var got types.CreateConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got.LoginID != "gavinBelson" || got.Password != "hooli2016" || got.Institution.ID != "AU00000" {
			t.Errorf("unexpected body: %+v", got)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"type":"job","id":"job-1","links":{"self":"/jobs/job-1"}}`))
	}))
	defer srv.Close()

	job, err := CreateConnection(context.Background(), restyFor(srv), "tok", "u-1", types.CreateConnectionRequest{
		LoginID:     "gavinBelson",
		Password:    "hooli2016",
		Institution: types.InstitutionRef{ID: "AU00000"},
	})
	if err != nil {
		t.Fatalf("CreateConnection error: %v", err)
	}
	if job.Type != "job" || job.ID != "job-1" || job.Links.Self != "/jobs/job-1" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestCreateConnection_EscapesUserID(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/users/a%2Fb/connections" {
			t.Errorf("user id not escaped: %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{"type":"job","id":"j"}`))
	}))
	defer srv.Close()
	if _, err := CreateConnection(context.Background(), restyFor(srv), "tok", "a/b", types.CreateConnectionRequest{}); err != nil {
		t.Fatalf("CreateConnection error: %v", err)
	}
}

func TestCreateConnection_UnknownUser(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"list","data":[{"type":"error","code":"resource-not-found","title":"Requested resource is not found."}]}`))
	}))
	defer srv.Close()
	_, err := CreateConnection(context.Background(), restyFor(srv), "tok", "nope", types.CreateConnectionRequest{})
	apiErr, ok := sdkerrors.As(err)
	if !ok || apiErr.Kind != sdkerrors.KindNotFound || apiErr.Details[0].Code != "resource-not-found" {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetJob_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/jobs/job-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"type":"job","id":"job-1","steps":[` +
			`{"title":"verify-credentials","status":"success","result":{"type":"link","url":"/users/u-1/connections/c-1"}},` +
			`{"title":"retrieve-accounts","status":"in-progress"}]}`))
	}))
	defer srv.Close()

	job, err := GetJob(context.Background(), restyFor(srv), "tok", "job-1")
	if err != nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if len(job.Steps) != 2 || job.Steps[0].Result == nil || job.Steps[0].Result.URL != "/users/u-1/connections/c-1" {
		t.Fatalf("unexpected steps: %+v", job.Steps)
	}
	if job.Succeeded() {
		t.Fatal("job with in-progress step reported success")
	}
}

func TestConnections_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := GetJob(context.Background(), restyFor(srv), "tok", "job-1")
	if !sdkerrors.IsKind(err, sdkerrors.KindServer) || !sdkerrors.IsRetryable(err) {
		t.Fatalf("expected retryable server error, got %v", err)
	}
}
