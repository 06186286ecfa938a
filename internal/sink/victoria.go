package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/metrics"
	"github.com/agungatd/daily-data-fetcher/internal/util"
)

type victoriaSink struct {
	cfg    config.VictoriaConfig
	client *http.Client
}

func NewVictoria(cfg config.VictoriaConfig) Sink {
	return &victoriaSink{cfg: cfg, client: util.NewHTTPClient(cfg.Timeout)}
}

func (v *victoriaSink) Name() string { return "victoria" }

// Push imports the run's samples in Prometheus text format, stamped with the
// run's finish time in milliseconds.
func (v *victoriaSink) Push(ctx context.Context, run Run) error {
	if run.Metrics == nil {
		return errors.New("no metrics batch")
	}
	samples, err := run.Metrics.Samples()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	ts := run.Finished.UnixMilli()
	var buf bytes.Buffer
	for _, s := range samples {
		fmt.Fprintf(&buf, "%s{%s} %g %d\n", s.Name, metrics.FormatLabels(s.Labels), s.Value, ts)
	}

	url := strings.TrimRight(v.cfg.URL, "/") + "/api/v1/import/prometheus"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	if ua := v.cfg.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	if err := util.CheckStatus("victoria", resp); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
