package hotseatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

// APIError is a refusal reported by the server. State is the frame at the time
// of the refusal when the server sent one.
type APIError struct {
	Status int
	hotseatdto.DomainError
	State *hotseatdto.State
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hotseat api error: status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

// Code extracts the domain error code from err, or "" when err is not an APIError.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) State(ctx context.Context) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodGet, "/api/state", nil, true)
}

// Click sends a pixel coordinate; the server maps it through its layout.
func (c *Client) Click(ctx context.Context, x, y int) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/click", hotseatdto.ClickRequest{X: &x, Y: &y}, false)
}

func (c *Client) ClickSquare(ctx context.Context, row, col int) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/click", hotseatdto.ClickRequest{Row: &row, Col: &col}, false)
}

func (c *Client) Button(ctx context.Context, name string) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/button", hotseatdto.ButtonRequest{Button: name}, false)
}

func (c *Client) Choose(ctx context.Context, index int) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/button", hotseatdto.ButtonRequest{Index: &index}, false)
}

func (c *Client) Escape(ctx context.Context) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/escape", nil, false)
}

func (c *Client) Save(ctx context.Context, slot string) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/save", hotseatdto.SlotRequest{Slot: slot}, false)
}

func (c *Client) Load(ctx context.Context, slot string) (*hotseatdto.State, error) {
	return c.call(ctx, fasthttp.MethodPost, "/api/load", hotseatdto.SlotRequest{Slot: slot}, false)
}

func (c *Client) Slots(ctx context.Context) ([]string, error) {
	var resp hotseatdto.SlotsResponse
	status, err := c.doJSON(ctx, fasthttp.MethodGet, "/api/slots", nil, &resp, true)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, &APIError{Status: status, DomainError: *resp.Error}
	}
	return resp.Slots, nil
}

// Screen fetches the current frame as PNG bytes.
func (c *Client) Screen(ctx context.Context) ([]byte, error) {
	var png []byte
	_, err := c.do(ctx, fasthttp.MethodGet, "/screen.png", nil, true, func(status int, body []byte) error {
		if status != fasthttp.StatusOK {
			return fmt.Errorf("screen: status=%d body=%s", status, truncate(string(body), 256))
		}
		png = append([]byte(nil), body...)
		return nil
	})
	return png, err
}

func (c *Client) call(ctx context.Context, method, path string, in any, retry bool) (*hotseatdto.State, error) {
	var resp hotseatdto.Response
	status, err := c.doJSON(ctx, method, path, in, &resp, retry)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return resp.State, &APIError{Status: status, DomainError: *resp.Error, State: resp.State}
	}
	if resp.State == nil {
		return nil, errors.New("hotseat api: empty response")
	}
	return resp.State, nil
}

// doJSON decodes every JSON reply, including refusals; the envelope carries the
// domain error, so only non-JSON replies are treated as transport failures.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) (int, error) {
	return c.do(ctx, method, path, in, retry, func(status int, body []byte) error {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: status=%d body=%s: %w", status, truncate(string(body), 256), err)
		}
		return nil
	})
}

func (c *Client) do(ctx context.Context, method, path string, in any, retry bool, handle func(status int, body []byte) error) (int, error) {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return 0, fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return 0, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if retry && attempt < attempts && shouldRetryStatus(status) {
			lastErr = fmt.Errorf("hotseat api: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return status, lastErr
			}
			continue
		}
		return status, handle(status, resp.Body())
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return 0, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
