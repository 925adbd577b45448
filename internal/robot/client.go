package robot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/robot-dashboard/internal/metrics"
)

const (
	statusEndpoint  = "/status"
	commandEndpoint = "/command"
)

// Client talks to the robot's webserver
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new robot webserver client
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "robot-client").Logger(),
	}
}

// Status checks whether the robot webserver answers the status endpoint
// with a success code.
func (c *Client) Status(ctx context.Context) error {
	return c.get(ctx, statusEndpoint, nil)
}

// Command asks the robot to run the command bound to id
func (c *Client) Command(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", id)
	if err := c.get(ctx, commandEndpoint, query); err != nil {
		return fmt.Errorf("command %q: %w", id, err)
	}

	c.logger.Debug().Str("command", id).Msg("Command accepted")
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) error {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RequestErrorsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	// No body contract; drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RequestErrorsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	return nil
}

// StatusError is returned when the webserver answers with a non-2xx code
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status: %d", e.Endpoint, e.Code)
}

// NetworkError is returned when the request never got a response
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err means the robot was unreachable, as
// opposed to reachable but answering with a failure status.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsStatusError reports whether err carries a non-2xx response
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}
