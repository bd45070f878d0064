package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIKeyHeader carries the static API key on every request.
const APIKeyHeader = "x-api-key"

// Client is the outbound adapter for the hospital REST API.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// serverError is the error body shape the API uses.
type serverError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// New creates a Client for baseURL. Every request carries apiKey and fails
// as a network error once timeout elapses.
func New(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader(APIKeyHeader, apiKey)
	}

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// Get issues a GET and decodes the response into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	req := c.httpClient.R().
		SetContext(ctx).
		SetError(&serverError{}).
		ExpectContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		// A success status with a body means the result failed to decode.
		if resp != nil && resp.RawResponse != nil && resp.IsSuccess() {
			if len(resp.Body()) == 0 {
				return nil
			}
			c.logger.Warn("API response could not be decoded",
				zap.String("op", op),
				zap.Int("status_code", resp.StatusCode()),
				zap.Error(err),
			)
			return &Error{Kind: KindServer, Op: op, StatusCode: resp.StatusCode(), Err: err}
		}
		c.logger.Warn("API request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	if resp.IsError() {
		var msg string
		// A non-JSON error body leaves the message empty.
		if payload, ok := resp.Error().(*serverError); ok && payload != nil {
			msg = payload.Message
			if msg == "" {
				msg = payload.Error
			}
		}
		c.logger.Warn("API returned error",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", msg),
		)
		return &Error{Kind: KindServer, Op: op, StatusCode: resp.StatusCode(), Message: msg}
	}

	c.logger.Debug("API request succeeded",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
	)
	return nil
}
