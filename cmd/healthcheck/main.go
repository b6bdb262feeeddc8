// Command healthcheck checks a running profilepanel from inside its
// container. It exits 0 when the health endpoint reports ok and the session
// endpoint can read the credential store, 1 otherwise.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	baseURL := "http://" + normalizeAddr(os.Getenv("PROFILEPANEL_LISTEN_ADDR"))
	if err := check(ctx, &http.Client{Timeout: 2 * time.Second}, baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

// check queries /api/v1/health and /api/v1/session on baseURL.
func check(ctx context.Context, client *http.Client, baseURL string) error {
	var health struct {
		Status string `json:"status"`
	}
	if err := getJSON(ctx, client, baseURL+"/api/v1/health", &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("health status %q", health.Status)
	}

	var session struct {
		State string `json:"state"`
	}
	if err := getJSON(ctx, client, baseURL+"/api/v1/session", &session); err != nil {
		return err
	}
	switch session.State {
	case "anonymous", "authenticated":
		return nil
	default:
		return fmt.Errorf("unexpected session state %q", session.State)
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

// normalizeAddr points the check at loopback when the server binds all
// interfaces, since it runs inside the same container.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
