package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// SessionOptions configures the Chrome session the client requests.
type SessionOptions struct {
	Headless     bool
	UserDataDir  string
	ExtensionDir string
	UserAgent    string
}

// Option configures the WebDriver client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithPollInterval overrides how often bounded waits re-check a condition.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// Client speaks the W3C WebDriver wire protocol to a chromedriver endpoint.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	sessionID    string
}

// NewClient constructs a WebDriver client for the given endpoint.
func NewClient(baseURL string, requestTimeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("webdriver endpoint required")
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	client := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		pollInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// StartSession creates a new browser session with the requested Chrome options.
func (c *Client) StartSession(ctx context.Context, opts SessionOptions) error {
	args := []string{
		"--no-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--disable-notifications",
		"--disable-infobars",
		"--start-maximized",
		"--disable-blink-features=AutomationControlled",
		"--use-fake-ui-for-media-stream",
		"--use-fake-device-for-media-stream",
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	if opts.UserAgent != "" {
		args = append(args, "user-agent="+opts.UserAgent)
	}
	if opts.UserDataDir != "" {
		args = append(args, "user-data-dir="+opts.UserDataDir)
	}
	if opts.ExtensionDir != "" {
		args = append(args, "--load-extension="+opts.ExtensionDir)
	}

	body := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"browserName": "chrome",
				"goog:chromeOptions": map[string]any{
					"args":            args,
					"excludeSwitches": []string{"enable-logging", "enable-automation"},
					"prefs": map[string]any{
						"profile.default_content_setting_values.media_stream_mic":    1,
						"profile.default_content_setting_values.media_stream_camera": 0,
						"profile.default_content_setting_values.notifications":       0,
					},
				},
			},
		},
	}

	var value struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.do(ctx, http.MethodPost, "/session", body, &value); err != nil {
		return fmt.Errorf("start webdriver session: %w", err)
	}
	if value.SessionID == "" {
		return errors.New("webdriver returned empty session id")
	}
	c.sessionID = value.SessionID
	return nil
}

// SessionID exposes the active session identifier.
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) Navigate(ctx context.Context, url string) error {
	return c.do(ctx, http.MethodPost, c.sessionPath("/url"), map[string]string{"url": url}, nil)
}

func (c *Client) Refresh(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.sessionPath("/refresh"), map[string]string{}, nil)
}

func (c *Client) FindAndClick(ctx context.Context, sel Selector, timeout time.Duration) error {
	elementID, err := c.waitForElement(ctx, sel, timeout)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.sessionPath("/element/"+elementID+"/click"), map[string]string{}, nil)
}

func (c *Client) FindAndType(ctx context.Context, sel Selector, text string, timeout time.Duration) error {
	elementID, err := c.waitForElement(ctx, sel, timeout)
	if err != nil {
		return err
	}
	body := map[string]any{"text": text}
	return c.do(ctx, http.MethodPost, c.sessionPath("/element/"+elementID+"/value"), body, nil)
}

// WaitForAny polls until one of the selectors matches and returns its index.
// It reports ErrNotFound when none appear within the timeout.
func (c *Client) WaitForAny(ctx context.Context, sels []Selector, timeout time.Duration) (int, error) {
	if len(sels) == 0 {
		return 0, errors.New("at least one selector required")
	}
	deadline := time.Now().Add(timeout)
	for {
		for i, sel := range sels {
			_, err := c.findElement(ctx, sel)
			if err == nil {
				return i, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return 0, err
			}
		}
		if time.Now().After(deadline) {
			return 0, ErrNotFound
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) GetAttribute(ctx context.Context, sel Selector, name string, timeout time.Duration) (string, error) {
	elementID, err := c.waitForElement(ctx, sel, timeout)
	if err != nil {
		return "", err
	}
	var value *string
	path := c.sessionPath("/element/" + elementID + "/attribute/" + name)
	if err := c.do(ctx, http.MethodGet, path, nil, &value); err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// GetText returns the rendered text of the first element matching sel.
func (c *Client) GetText(ctx context.Context, sel Selector, timeout time.Duration) (string, error) {
	elementID, err := c.waitForElement(ctx, sel, timeout)
	if err != nil {
		return "", err
	}
	var value string
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/element/"+elementID+"/text"), nil, &value); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (c *Client) ExecuteScript(ctx context.Context, script string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body := map[string]any{"script": script, "args": args}
	var value json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/execute/sync"), body, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Quit destroys the browser session. Further calls report ErrSessionLost.
func (c *Client) Quit(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, "/session/"+c.sessionID, nil, nil)
	c.sessionID = ""
	return err
}

func (c *Client) waitForElement(ctx context.Context, sel Selector, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		elementID, err := c.findElement(ctx, sel)
		if err == nil {
			return elementID, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		if time.Now().After(deadline) {
			return "", ErrNotFound
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) findElement(ctx context.Context, sel Selector) (string, error) {
	body := map[string]string{"using": sel.Using, "value": sel.Value}
	var value map[string]string
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/element"), body, &value); err != nil {
		return "", err
	}
	if id, ok := value[elementKey]; ok && id != "" {
		return id, nil
	}
	return "", ErrNotFound
}

func (c *Client) sessionPath(suffix string) string {
	return "/session/" + c.sessionID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if path != "/session" && c.sessionID == "" {
		return ErrSessionLost
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode webdriver request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build webdriver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The driver process going away is indistinguishable from any other
		// transport failure, and neither is recoverable mid-session.
		return fmt.Errorf("%w: %v", ErrSessionLost, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read webdriver response: %w", err)
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode webdriver response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp.StatusCode, envelope.Value)
	}
	if out != nil && len(envelope.Value) > 0 {
		if err := json.Unmarshal(envelope.Value, out); err != nil {
			return fmt.Errorf("decode webdriver value: %w", err)
		}
	}
	return nil
}

func (c *Client) errorFromResponse(status int, value json.RawMessage) error {
	var details struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(value, &details)
	switch details.Error {
	case "no such element", "stale element reference":
		return ErrNotFound
	case "invalid session id", "no such window":
		return ErrSessionLost
	}
	return fmt.Errorf("webdriver returned %d: %s %s", status, details.Error, strings.TrimSpace(details.Message))
}
