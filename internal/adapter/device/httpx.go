package device

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/exportguard/exportguardd/internal/core/domain"
)

// httpDevice is the shared plumbing for the JSON-over-HTTP device clients.
// The client carries the per-call 5s timeout; sessions are not kept open
// between polls, every request is its own scoped acquisition.
type httpDevice struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

func newHTTPDevice(host, username, password string) httpDevice {
	base := host
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return httpDevice{
		baseURL:  strings.TrimRight(base, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: DeviceTimeout},
	}
}

func (d httpDevice) host() string {
	if u, err := url.Parse(d.baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return d.baseURL
}

// getJSON fetches path and decodes the body into out. Every failure mode,
// transport, status and parse alike, collapses into DeviceUnreachable.
func (d httpDevice) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return domain.Unreachable(d.host(), err)
	}
	return d.do(req, out)
}

func (d httpDevice) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Unreachable(d.host(), err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return domain.Unreachable(d.host(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, out)
}

func (d httpDevice) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Unreachable(d.host(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return d.do(req, out)
}

func (d httpDevice) do(req *http.Request, out any) error {
	if d.username != "" {
		req.SetBasicAuth(d.username, d.password)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return domain.Unreachable(d.host(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return domain.Unreachable(d.host(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Unreachable(d.host(), fmt.Errorf("malformed response: %w", err))
	}
	return nil
}
