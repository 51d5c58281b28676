package analytics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gfcontext "github.com/vnykmshr/gatrack/pkg/common/context"
	"github.com/vnykmshr/gatrack/pkg/common/errors"
)

// DefaultEndpoint is the Measurement Protocol collection endpoint.
const DefaultEndpoint = "https://www.google-analytics.com/collect"

// DefaultUserAgent identifies gatrack to the collection endpoint.
const DefaultUserAgent = "gatrack/1.0"

// Transport delivers encoded hits.
type Transport interface {
	Send(ctx context.Context, values url.Values) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, values url.Values) error

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, values url.Values) error {
	return f(ctx, values)
}

// HTTPTransport posts hits as form encoded bodies.
type HTTPTransport struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	// Timeout bounds each request. Zero means the caller's context alone applies.
	Timeout time.Duration
}

// NewHTTPTransport returns a transport posting to endpoint.
func NewHTTPTransport(endpoint string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{Endpoint: endpoint, Timeout: timeout}
}

// Send posts values to the endpoint. Any non-2xx response is an error.
func (t *HTTPTransport) Send(ctx context.Context, values url.Values) error {
	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	ua := t.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	ctx, cancel := gfcontext.WithOptionalTimeout(ctx, t.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return errors.NewOperationError("analytics", "Send", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		if gfcontext.IsTimedOut(ctx) {
			return errors.NewOperationError("analytics", "Send", errors.ErrTimeout).WithContext(endpoint)
		}
		return errors.NewOperationError("analytics", "Send", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewOperationError("analytics", "Send", fmt.Errorf("unexpected status %d", resp.StatusCode)).
			WithContext(endpoint)
	}
	return nil
}
