package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// debugTransport logs every request and response for troubleshooting API
// communication (unexpected statuses, malformed payloads, auth problems).
//
// Enable with BASIQ_DEBUG=true or DEBUG=true, or WithDebugLogging(true).
//
// Requests are dumped without their body and with the Authorization header
// redacted, and token responses without their body, so institution
// credentials and tokens never reach the log. Other response bodies are
// dumped in full and may contain account data; keep this off in production.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()

	redacted := req.Clone(req.Context())
	if redacted.Header.Get("Authorization") != "" {
		redacted.Header.Set("Authorization", "REDACTED")
	}
	if reqDump, err := httputil.DumpRequestOut(redacted, false); err == nil {
		log.Debug().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("request_dump", string(reqDump)).
			Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	// Token responses carry the bearer credential; log their headers only.
	withBody := !strings.HasSuffix(req.URL.Path, "/token")
	if respDump, err := httputil.DumpResponse(resp, withBody); err == nil {
		log.Debug().
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Str("response_dump", string(respDump)).
			Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether BASIQ_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("BASIQ_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// restyLogger routes resty's internal warnings through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func (restyLogger) Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { log.Debug().Msgf(format, v...) }
