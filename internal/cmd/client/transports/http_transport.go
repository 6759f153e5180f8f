package transports

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTransport implements GreeterTransport over the JSON/SSE gateway. Chat
// is emulated with one POST per name.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport returns a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("http %s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Send posts one name.
func (t *HTTPTransport) Send(ctx context.Context, name string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := t.do(ctx, http.MethodPost, "/v1/messages", map[string]string{"name": name}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Chat posts each name in order.
func (t *HTTPTransport) Chat(ctx context.Context, names <-chan string, onAck func(string) error) error {
	for name := range names {
		ack, err := t.Send(ctx, name)
		if err != nil {
			return err
		}
		if err := onAck(ack); err != nil {
			return stopped(err)
		}
	}
	return nil
}

// List fetches the persisted greetings.
func (t *HTTPTransport) List(ctx context.Context) ([]string, error) {
	var res struct {
		Messages []string `json:"messages"`
	}
	if err := t.do(ctx, http.MethodGet, "/v1/messages", nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// Watch reads the SSE feed.
func (t *HTTPTransport) Watch(ctx context.Context, onMessage func(string) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/messages/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http GET /v1/messages/stream: %s", resp.Status)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if err := onMessage(ev.Message); err != nil {
			return stopped(err)
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return sc.Err()
}
