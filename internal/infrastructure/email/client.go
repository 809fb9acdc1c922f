package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"devhub.backend/internal/config"
)

// Client talks to the platform mailer service. Sends are fire-and-forget
// from the core's perspective; callers log failures and continue.
type Client struct {
	baseURL    string
	from       string
	httpClient *http.Client
}

// NewClient creates a mailer client from configuration
func NewClient(cfg config.EmailConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendRequest struct {
	From     string            `json:"from"`
	To       []string          `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

// SendVerification sends the uplift verification email
func (c *Client) SendVerification(ctx context.Context, to, code, appName string) error {
	return c.send(ctx, sendRequest{
		From:     c.from,
		To:       []string{to},
		Template: "uplift-verification",
		Params: map[string]string{
			"verificationCode": code,
			"applicationName":  appName,
		},
	})
}

// SendCollaboratorAdded notifies admins that a collaborator was added
func (c *Client) SendCollaboratorAdded(ctx context.Context, to, appName string, admins []string) error {
	return c.send(ctx, sendRequest{
		From:     c.from,
		To:       append([]string{to}, admins...),
		Template: "collaborator-added",
		Params: map[string]string{
			"applicationName": appName,
		},
	})
}

// SendCollaboratorRemoved notifies the removed collaborator and admins
func (c *Client) SendCollaboratorRemoved(ctx context.Context, to, appName string, admins []string) error {
	return c.send(ctx, sendRequest{
		From:     c.from,
		To:       append([]string{to}, admins...),
		Template: "collaborator-removed",
		Params: map[string]string{
			"applicationName": appName,
		},
	})
}

func (c *Client) send(ctx context.Context, body sendRequest) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailer error %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
