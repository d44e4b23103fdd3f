package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// CreateInteractionResponse answers an interaction. It is sent once and
// never retried: interaction tokens accept a single initial response.
func (c *Client) CreateInteractionResponse(ctx context.Context, interactionID, token string, resp InteractionResponse) error {
	path := "/interactions/" + url.PathEscape(interactionID) + "/" + url.PathEscape(token) + "/callback"

	if _, err := c.doRequest(ctx, http.MethodPost, path, resp); err != nil {
		return fmt.Errorf("interaction callback %s: %w", interactionID, err)
	}
	return nil
}

// GetGatewayURL returns the gateway websocket URL with the API version and
// encoding the gateway client speaks.
func (c *Client) GetGatewayURL(ctx context.Context) (string, error) {
	var resp GatewayResponse
	if err := c.get(ctx, "/gateway", &resp); err != nil {
		return "", fmt.Errorf("get gateway: %w", err)
	}
	if resp.URL == "" {
		return "", errors.New("get gateway: empty url")
	}

	u, err := url.Parse(resp.URL)
	if err != nil {
		return "", fmt.Errorf("parse gateway url: %w", err)
	}
	q := u.Query()
	q.Set("v", "10")
	q.Set("encoding", "json")
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
