package chatplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/opendesk/ticketd/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

var ErrUnexpectedStatus = errors.New("chat platform returned unexpected status")

// Config carries the REST endpoint identity for one guild.
type Config struct {
	BaseURL string
	Token   string
	GuildID string
}

// RESTClient talks to the chat platform's HTTP API. Every call runs inside
// the circuit breaker so a dead platform fails fast instead of piling up
// blocked archival goroutines.
type RESTClient struct {
	cfg            Config
	client         httpx.Client
	logger         *logrus.Logger
	circuitBreaker httpx.CircuitBreaker
}

func NewRESTClient(
	cfg Config,
	client httpx.Client,
	logger *logrus.Logger,
	circuitBreaker httpx.CircuitBreaker,
) Client {
	if client == nil {
		client = &http.Client{}
	}
	return &RESTClient{
		cfg:            cfg,
		client:         client,
		logger:         logger,
		circuitBreaker: circuitBreaker,
	}
}

func (c *RESTClient) CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error) {
	var out Channel
	path := fmt.Sprintf("/guilds/%s/channels", url.PathEscape(c.cfg.GuildID))
	if err := c.do(ctx, http.MethodPost, path, spec, &out); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return &out, nil
}

func (c *RESTClient) Channel(ctx context.Context, channelID string) (*Channel, error) {
	var out Channel
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &out, nil
}

func (c *RESTClient) SendMessage(ctx context.Context, channelID string, msg Outbound) error {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	if msg.Attachment != nil {
		if err := c.doMultipart(ctx, path, msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		return nil
	}

	payload := map[string]interface{}{}
	if msg.Content != "" {
		payload["content"] = msg.Content
	}
	if msg.Embed != nil {
		payload["embed"] = msg.Embed
	}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *RESTClient) FetchHistory(ctx context.Context, channelID string) ([]Message, error) {
	var out []Message
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return out, nil
}

func (c *RESTClient) MoveChannel(ctx context.Context, channelID, parentID string) error {
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	body := map[string]string{"parent_id": parentID}
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("move channel: %w", err)
	}
	return nil
}

func (c *RESTClient) RenameChannel(ctx context.Context, channelID, name string) error {
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("rename channel: %w", err)
	}
	return nil
}

func (c *RESTClient) EditPermission(ctx context.Context, channelID, memberID string, allow, deny []string) error {
	path := fmt.Sprintf("/channels/%s/permissions/%s", url.PathEscape(channelID), url.PathEscape(memberID))
	body := PermissionOverwrite{MemberID: memberID, Allow: allow, Deny: deny}
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("edit permission: %w", err)
	}
	return nil
}

func (c *RESTClient) DeletePermission(ctx context.Context, channelID, memberID string) error {
	path := fmt.Sprintf("/channels/%s/permissions/%s", url.PathEscape(channelID), url.PathEscape(memberID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}

func (c *RESTClient) Member(ctx context.Context, memberID string) (*Member, error) {
	var out Member
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(c.cfg.GuildID), url.PathEscape(memberID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &out, nil
}

func (c *RESTClient) GuildName(ctx context.Context) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/guilds/%s", url.PathEscape(c.cfg.GuildID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", fmt.Errorf("get guild: %w", err)
	}
	return out.Name, nil
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.circuitBreaker.Execute(func() error {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.execute(req, out)
	})
}

func (c *RESTClient) doMultipart(ctx context.Context, path string, msg Outbound) error {
	return c.circuitBreaker.Execute(func() error {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		payload := map[string]interface{}{}
		if msg.Content != "" {
			payload["content"] = msg.Content
		}
		if msg.Embed != nil {
			payload["embed"] = msg.Embed
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal message payload: %w", err)
		}
		if err := writer.WriteField("payload_json", string(encoded)); err != nil {
			return fmt.Errorf("failed to write payload part: %w", err)
		}

		part, err := writer.CreateFormFile("file", msg.Attachment.Name)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(msg.Attachment.Data); err != nil {
			return fmt.Errorf("failed to write attachment: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to finalize multipart body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return c.execute(req, nil)
	})
}

func (c *RESTClient) execute(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
			"status": resp.StatusCode,
			"body":   string(payload),
		}).Error("chat platform call failed")
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
