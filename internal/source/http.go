package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/model"
	"github.com/agungatd/daily-data-fetcher/internal/util"
)

// TransportError is any failure between issuing the GET and holding a
// decoded payload.
type TransportError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type httpSource struct {
	name      string
	shape     Shape
	userAgent string
	client    *http.Client
}

func NewHTTPSource(name string, shape Shape, cfg config.CommonHTTP) Source {
	return &httpSource{
		name:      name,
		shape:     shape,
		userAgent: cfg.UserAgent,
		client:    util.NewHTTPClient(cfg.Timeout),
	}
}

func (s *httpSource) Name() string { return s.name }

func (s *httpSource) Shape() Shape { return s.shape }

// Fetch issues a single GET against the source URL and decodes the body as a
// JSON object. There is no retry and no pagination.
func (s *httpSource) Fetch(ctx context.Context) (model.Payload, error) {
	url := s.shape.URL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if err := util.CheckStatus(s.name, resp); err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	var payload model.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode json: %w", err)}
	}
	log.Printf("fetch: %s returned %d bytes from %s", s.name, len(raw), url)
	return payload, nil
}
