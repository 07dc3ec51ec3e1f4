package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/kastheco/marquee/typewriter"
)

// Client talks to a marquee server over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the server at baseURL
// (e.g. "http://127.0.0.1:7434").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Ping checks whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, "/v1/ping")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// Presets returns the preset names the server knows.
func (c *Client) Presets(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, "/v1/presets")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	return names, nil
}

// Preset returns one preset by name.
func (c *Client) Preset(ctx context.Context, name string) (PresetInfo, error) {
	resp, err := c.do(ctx, "/v1/presets/"+url.PathEscape(name))
	if err != nil {
		return PresetInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PresetInfo{}, decodeError(resp)
	}
	var info PresetInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return PresetInfo{}, fmt.Errorf("decode preset: %w", err)
	}
	return info, nil
}

// Stream opens the frame stream for name and calls fn for every frame
// until the animation completes (nil error), ctx is cancelled, or the
// connection fails.
func (c *Client) Stream(ctx context.Context, name string, skip bool, fn func(typewriter.Frame)) error {
	u, err := url.Parse(c.baseURL + "/v1/presets/" + url.PathEscape(name) + "/stream")
	if err != nil {
		return fmt.Errorf("stream url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if skip {
		u.RawQuery = "skip=true"
	}

	conn, resp, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return decodeError(resp)
		}
		return fmt.Errorf("marquee server unreachable: %w", err)
	}
	defer conn.CloseNow()

	for {
		var f typewriter.Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read frame: %w", err)
		}
		fn(f)
	}
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marquee server unreachable: %w", err)
	}
	return resp, nil
}

// ErrNotFound is returned when the server has no such preset.
var ErrNotFound = errors.New("preset not found")

// decodeError reads an error response body and returns a formatted error.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, body.Error)
	}
	return fmt.Errorf("marquee server: %s (status %d)", body.Error, resp.StatusCode)
}
