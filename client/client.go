package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/jdenly/basiq-api/client/internal/api"
)

// DefaultBaseURL is the Basiq production host.
const DefaultBaseURL = "https://au-api.basiq.io"

// DefaultAPIVersion is the pinned value of the basiq-version header.
const DefaultAPIVersion = "2.0"

// VersionHeaderScope selects which requests carry the basiq-version header.
type VersionHeaderScope int

const (
	// VersionOnToken sends the header on token requests only.
	VersionOnToken VersionHeaderScope = iota
	// VersionOnAll sends the header on every request.
	VersionOnAll
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client talks to the Basiq API. It holds the API key and the current access
// token so callers do not have to thread the token through every call. It is
// safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string // pre-encoded Basic credential
	version      string
	versionScope VersionHeaderScope
	debug        bool

	http *http.Client
	rest *resty.Client

	mu    sync.RWMutex
	token *AccessToken
}

// New constructs a Client for the given API key. Additional options can be
// provided via functional arguments.
func New(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("apiKey cannot be empty")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		version: DefaultAPIVersion,
		http:    &http.Client{},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	c.wrapTransport()

	c.rest = resty.NewWithClient(c.http).
		SetBaseURL(c.baseURL).
		SetLogger(restyLogger{})
	return c
}

// wrapTransport installs the debug and version-header wrappers. The version
// wrapper sits on top so debug dumps show the header it adds.
func (c *Client) wrapTransport() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.debug {
		base = &debugTransport{base: base}
	}
	if c.versionScope == VersionOnAll {
		base = &versionTransport{base: base, version: c.version}
	}
	c.http.Transport = base
}

// versionTransport adds the basiq-version header to every request.
type versionTransport struct {
	base    http.RoundTripper
	version string
}

func (t *versionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(api.VersionHeader) != "" {
		return t.base.RoundTrip(req)
	}
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	cloned.Header.Set(api.VersionHeader, t.version)
	return t.base.RoundTrip(cloned)
}

// BaseURL returns the API host the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// --------------------------------------------------------------------
// Token context
// --------------------------------------------------------------------

// Token returns the access token currently held by the client, or nil.
func (c *Client) Token() *AccessToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the held access token. Passing nil clears it.
func (c *Client) SetToken(tok *AccessToken) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// Authenticate obtains a fresh access token with the client's API key and
// holds it for subsequent calls. Expired tokens are never renewed implicitly;
// call Authenticate again.
func (c *Client) Authenticate(ctx context.Context) (*AccessToken, error) {
	tok, err := c.GetAccessToken(ctx, c.apiKey)
	if err != nil {
		return nil, err
	}
	c.SetToken(tok)
	return tok, nil
}

// bearerToken returns the held token string or ErrNoAccessToken.
func (c *Client) bearerToken() (string, error) {
	tok := c.Token()
	if tok == nil || tok.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return tok.AccessToken, nil
}

// observe records metrics and a debug log line for a finished operation.
func (c *Client) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	requestsTotal.WithLabelValues(op, outcomeFor(err)).Inc()
	if err != nil {
		log.Debug().Err(err).Str("operation", op).Dur("elapsed", elapsed).Msg("basiq call failed")
	}
}

// --------------------------------------------------------------------
// Token operations - delegated to internal/api
// --------------------------------------------------------------------

// GetAccessToken exchanges apiKey for an access token without storing it.
// Use Authenticate to obtain and hold a token in one step.
func (c *Client) GetAccessToken(ctx context.Context, apiKey string) (tok *AccessToken, err error) {
	defer func(start time.Time) { c.observe(api.OpGetAccessToken, start, err) }(time.Now())
	return api.GetAccessToken(ctx, c.rest, apiKey, c.version)
}

// --------------------------------------------------------------------
// User operations - delegated to internal/api
// --------------------------------------------------------------------

// ListUsers returns the users visible to the held token.
func (c *Client) ListUsers(ctx context.Context) (users *UserList, err error) {
	defer func(start time.Time) { c.observe(api.OpListUsers, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}
	return api.ListUsers(ctx, c.rest, token)
}

// CreateUser creates a user. Calling it twice with the same input is not
// idempotent; the API decides whether to duplicate or reject.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (user *User, err error) {
	defer func(start time.Time) { c.observe(api.OpCreateUser, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}
	return api.CreateUser(ctx, c.rest, token, req)
}

// DeleteUser deletes a user and everything linked to it.
func (c *Client) DeleteUser(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { c.observe(api.OpDeleteUser, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return err
	}
	return api.DeleteUser(ctx, c.rest, token, userID)
}

// --------------------------------------------------------------------
// Connection and job operations - delegated to internal/api
// --------------------------------------------------------------------

// CreateConnection links a user to an institution and returns the job that
// performs the link. It does not wait for the job; see the await package.
func (c *Client) CreateConnection(ctx context.Context, userID string, req CreateConnectionRequest) (job *Job, err error) {
	defer func(start time.Time) { c.observe(api.OpCreateConnection, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}
	return api.CreateConnection(ctx, c.rest, token, userID, req)
}

// GetJob retrieves the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (job *Job, err error) {
	defer func(start time.Time) { c.observe(api.OpGetJob, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}
	return api.GetJob(ctx, c.rest, token, jobID)
}

// --------------------------------------------------------------------
// Account operations - delegated to internal/api
// --------------------------------------------------------------------

// GetAccounts returns a user's accounts. Right after CreateConnection the
// list may still be incomplete.
func (c *Client) GetAccounts(ctx context.Context, userID string) (accounts *AccountList, err error) {
	defer func(start time.Time) { c.observe(api.OpGetAccounts, start, err) }(time.Now())
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}
	return api.GetAccounts(ctx, c.rest, token, userID)
}
