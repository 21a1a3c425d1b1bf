package rotator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the Microsoft Graph API root.
const DefaultEndpoint = "https://graph.microsoft.com/v1.0"

// Message is the subset of a mailbox message the rotation loop works with.
type Message struct {
	ID      string
	Subject string
	Sender  string // empty when the message carries no from address
}

// GraphClient is a thin wrapper around the Microsoft Graph mail endpoints
// for a single user's mailbox.
type GraphClient struct {
	httpClient *http.Client
	endpoint   string
	user       string
	folder     string
	reply      AutoReplyConfig

	token string
}

// NewGraphClient builds a client for the configured mailbox. The access
// token must be set with SetToken before any call is made.
func NewGraphClient(cfg MailboxConfig, reply AutoReplyConfig) *GraphClient {
	return &GraphClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   DefaultEndpoint,
		user:       cfg.User,
		folder:     cfg.Folder,
		reply:      reply,
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *GraphClient) SetToken(token string) {
	c.token = token
}

// ListUnread loads up to limit unread messages from the watched folder.
// Only the message id, subject and sender address are retrieved.
func (c *GraphClient) ListUnread(ctx context.Context, limit int) ([]Message, error) {
	slog.Info("Getting newest unread messages", "user", c.user, "folder", c.folder, "limit", limit)

	endpoint := fmt.Sprintf("%s/users/%s/mailFolders/%s/messages", c.endpoint, c.user, c.folder)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	query := url.Values{}
	query.Set("$filter", "isRead eq false")
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$select", "id,subject,from")
	req.URL.RawQuery = query.Encode()

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var payload struct {
		Value []struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			From    *struct {
				EmailAddress struct {
					Name    string `json:"name"`
					Address string `json:"address"`
				} `json:"emailAddress"`
			} `json:"from"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode message list: %w", err)
	}

	messages := make([]Message, 0, len(payload.Value))
	for _, m := range payload.Value {
		msg := Message{ID: m.ID, Subject: m.Subject}
		if m.From != nil {
			msg.Sender = m.From.EmailAddress.Address
		}
		messages = append(messages, msg)
	}

	slog.Info("Loaded messages", "count", len(messages))

	return messages, nil
}

// Forward asks the server to forward a message to a single recipient. The
// message itself never passes through this process.
func (c *GraphClient) Forward(ctx context.Context, messageID, recipientName, recipientEmail string) error {
	slog.Info("Forwarding message", "recipient", recipientEmail)
	slog.Debug("Forwarding message", "id", messageID)

	endpoint := fmt.Sprintf("%s/users/%s/messages/%s/forward", c.endpoint, c.user, messageID)

	body := map[string]any{
		"comment": "",
		"toRecipients": []map[string]any{
			{
				"emailAddress": map[string]string{
					"address": recipientEmail,
					"name":    recipientName,
				},
			},
		},
	}

	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return apiError(resp)
	}

	return nil
}

// MarkRead flags a message as read.
func (c *GraphClient) MarkRead(ctx context.Context, messageID string) error {
	slog.Info("Marking message as read")
	slog.Debug("Marking message as read", "id", messageID)

	endpoint := fmt.Sprintf("%s/users/%s/messages/%s", c.endpoint, c.user, messageID)

	payload, err := json.Marshal(map[string]bool{"isRead": true})
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return nil
}

// SendReply sends the configured auto-reply to the given address from the
// watched mailbox.
func (c *GraphClient) SendReply(ctx context.Context, recipientEmail string) error {
	slog.Info("Sending auto-reply", "recipient", recipientEmail)

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", c.endpoint, c.user)

	body := map[string]any{
		"message": map[string]any{
			"subject": c.reply.Subject,
			"body": map[string]string{
				"contentType": "Text",
				"content":     c.reply.Body,
			},
			"toRecipients": []map[string]any{
				{
					"emailAddress": map[string]string{
						"address": recipientEmail,
					},
				},
			},
		},
	}

	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return apiError(resp)
	}

	return nil
}

func (c *GraphClient) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *GraphClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// apiError extracts the Graph error message from a non-2xx response. The
// payload is only used for the error text, never interpreted further.
func apiError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error.Message == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload.Error.Message)
}
