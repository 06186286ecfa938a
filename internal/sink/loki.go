package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/util"
)

type lokiSink struct {
	cfg    config.LokiConfig
	client *http.Client
}

func NewLoki(cfg config.LokiConfig) Sink {
	return &lokiSink{cfg: cfg, client: util.NewHTTPClient(cfg.Timeout)}
}

func (l *lokiSink) Name() string { return "loki" }

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Push sends one JSON line summarising the run.
func (l *lokiSink) Push(ctx context.Context, run Run) error {
	line, err := json.Marshal(map[string]any{
		"run_id":      run.ID,
		"source":      run.Source,
		"category":    run.Category,
		"fetched":     run.Fetched,
		"filtered":    run.Filtered,
		"duration_ms": run.Duration.Milliseconds(),
		"report_path": run.ReportPath,
	})
	if err != nil {
		return err
	}

	payload := struct {
		Streams []lokiStream `json:"streams"`
	}{
		Streams: []lokiStream{{
			Stream: map[string]string{
				"job":      l.cfg.Job,
				"source":   run.Source,
				"category": run.Category,
			},
			// Loki expects ns timestamp as a decimal string
			Values: [][2]string{{fmt.Sprintf("%d", run.Finished.UnixNano()), string(line)}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := strings.TrimRight(l.cfg.URL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if l.cfg.TenantID != "" {
		req.Header.Set("X-Scope-OrgID", l.cfg.TenantID)
	}
	if ua := l.cfg.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	if err := util.CheckStatus("loki", resp); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
