package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-resty/resty/v2"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

// restyFor points a resty client at srv.
func restyFor(srv *httptest.Server) *resty.Client {
	return resty.NewWithClient(srv.Client()).SetBaseURL(srv.URL)
}

// failingResty returns a resty client whose transport always fails.
func failingResty() *resty.Client {
	return resty.NewWithClient(&http.Client{Transport: &errRT{}}).SetBaseURL("http://example.com")
}

// errorBody is a representative Basiq error envelope.
const errorBody = `{"type":"list","correlationId":"c-1","data":[{"type":"error","code":"parameter-not-valid","title":"Parameter value is not valid","detail":"Email is not valid","source":{"parameter":"email"}}]}`
