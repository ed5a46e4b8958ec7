package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	c := New("test-api-key")
	if c == nil {
		t.Fatalf("expected client")
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("base url = %s", c.BaseURL())
	}
	if c.Token() != nil {
		t.Fatalf("new client must not hold a token")
	}
}

func TestNew_EmptyKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty api key")
		}
	}()
	New("")
}

func TestNew_BadOptionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid option")
		}
	}()
	New("k", WithHTTPTimeout(0))
}

func TestBearerOperations_RequireToken(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL))
	ctx := context.Background()

	if _, err := c.ListUsers(ctx); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("ListUsers: expected ErrNoAccessToken, got %v", err)
	}
	if _, err := c.CreateUser(ctx, CreateUserRequest{Email: "e"}); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("CreateUser: expected ErrNoAccessToken, got %v", err)
	}
	if err := c.DeleteUser(ctx, "u"); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("DeleteUser: expected ErrNoAccessToken, got %v", err)
	}
	if _, err := c.CreateConnection(ctx, "u", CreateConnectionRequest{}); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("CreateConnection: expected ErrNoAccessToken, got %v", err)
	}
	if _, err := c.GetJob(ctx, "j"); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("GetJob: expected ErrNoAccessToken, got %v", err)
	}
	if _, err := c.GetAccounts(ctx, "u"); !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("GetAccounts: expected ErrNoAccessToken, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("no request should reach the server without a token, got %d", hits)
	}
}

func TestErrorHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			w.WriteHeader(http.StatusUnauthorized)
		case "/users/missing/accounts":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := New("k", WithBaseURL(srv.URL), WithAccessToken(&AccessToken{AccessToken: "t"}))
	ctx := context.Background()

	_, err := c.ListUsers(ctx)
	if !IsAuthentication(err) || IsValidation(err) || IsRetryable(err) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	_, err = c.GetAccounts(ctx, "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = c.CreateUser(ctx, CreateUserRequest{})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusBadRequest || apiErr.Kind != KindValidation {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if IsNetwork(err) {
		t.Fatal("validation error reported as network")
	}
}

func TestObserve_RecordsOutcome(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("get_job", "no_token"))
	c := New("k")
	_, _ = c.GetJob(context.Background(), "j")
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("get_job", "no_token"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestOutcomeFor(t *testing.T) {
	if outcomeFor(nil) != "success" {
		t.Fatal("nil error should be success")
	}
	if outcomeFor(errors.New("x")) != "error" {
		t.Fatal("plain error should be error")
	}
	if got := outcomeFor(fmt.Errorf("list: %w", context.Canceled)); got != "canceled" {
		t.Fatalf("cancellation outcome = %q", got)
	}
}
