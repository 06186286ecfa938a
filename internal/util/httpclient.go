package util

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// NewHTTPClient returns a client with a bounded dial/handshake and an overall
// request timeout. A zero timeout leaves only the context to end a request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// CheckStatus drains and closes a non-2xx body into an error carrying the
// first bytes of the response.
func CheckStatus(name string, resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	resp.Body.Close()
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return fmt.Errorf("%s http %d: %s", name, resp.StatusCode, msg)
	}
	return fmt.Errorf("%s http %d", name, resp.StatusCode)
}
