package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client during construction in New.
//
// Transport wrappers (debug logging, version header) are installed after all
// options have run, so option order does not matter.
type Option func(*Client) error

// WithBaseURL overrides the API host, e.g. to target a stub server in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("baseURL cannot be empty")
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithHTTPClient sends calls through hc, e.g. one with a proxy or custom TLS.
// hc is copied, and a timeout set earlier by WithHTTPTimeout is kept when hc
// has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		timeout := c.http.Timeout
		cp := *hc
		if cp.Timeout == 0 {
			cp.Timeout = timeout
		}
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout caps each Basiq call, connection setup through reading
// the body. Without it a call runs until its context ends.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be positive, got %s", d)
		}
		c.http.Timeout = d
		return nil
	}
}

// WithAPIVersion sets the value of the basiq-version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) error {
		if version == "" {
			return fmt.Errorf("api version cannot be empty")
		}
		c.version = version
		return nil
	}
}

// WithVersionHeaderScope chooses whether basiq-version is sent on token
// requests only (the default) or on every request.
func WithVersionHeaderScope(scope VersionHeaderScope) Option {
	return func(c *Client) error {
		switch scope {
		case VersionOnToken, VersionOnAll:
			c.versionScope = scope
			return nil
		default:
			return fmt.Errorf("unknown version header scope %d", scope)
		}
	}
}

// WithAccessToken seeds the client with a token obtained elsewhere.
func WithAccessToken(tok *AccessToken) Option {
	return func(c *Client) error {
		c.token = tok
		return nil
	}
}

// WithDebugLogging dumps every request and response at zerolog debug level,
// tagged with a request id. Credentials are kept out of the dump; account
// data in response bodies is not.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.debug = true
		}
		return nil
	}
}

// ParseVersionHeaderScope maps "token" or "all" to a scope.
func ParseVersionHeaderScope(s string) (VersionHeaderScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "token":
		return VersionOnToken, nil
	case "all":
		return VersionOnAll, nil
	default:
		return VersionOnToken, fmt.Errorf("unknown version header scope %q (want token or all)", s)
	}
}
