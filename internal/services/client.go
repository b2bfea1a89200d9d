package services

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"ttx/internal/models"
)

// Client composes the gateway, pacer, and retry policy into the call surface
// the entity group adapters use. Every call waits for the tool's pacing slot,
// then runs through the 429 retry loop.
type Client struct {
	gateway     *Gateway
	pacer       *Pacer
	maxAttempts int
	logger      *log.Logger
}

// NewClient wires a Client. maxAttempts <= 0 selects [DefaultMaxAttempts].
func NewClient(gateway *Gateway, pacer *Pacer, maxAttempts int, logger *log.Logger) *Client {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Client{
		gateway:     gateway,
		pacer:       pacer,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Do performs one paced, retried call against the tool.
func (c *Client) Do(ctx context.Context, tool models.ToolName, method, path string, query url.Values, body any) (*APIResponse, error) {
	return WithRetry(ctx, func(ctx context.Context) (*APIResponse, error) {
		if err := c.pacer.Wait(ctx, tool); err != nil {
			return nil, err
		}
		if c.logger != nil {
			c.logger.Debug("tool request", "tool", tool.String(), "method", method, "path", path)
		}
		return c.gateway.Request(ctx, tool, method, path, query, body)
	}, c.maxAttempts)
}

// Get performs a paced GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, tool models.ToolName, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, tool, "GET", path, query, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Post performs a paced POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, tool models.ToolName, path string, body, out any) error {
	resp, err := c.Do(ctx, tool, "POST", path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Delete performs a paced DELETE, ignoring the response body.
func (c *Client) Delete(ctx context.Context, tool models.ToolName, path string) error {
	_, err := c.Do(ctx, tool, "DELETE", path, nil, nil)
	return err
}
