package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/metrics"
	"github.com/agungatd/daily-data-fetcher/internal/util"
)

type pushgatewaySink struct {
	cfg    config.PushgatewayConfig
	client push.HTTPDoer
}

func NewPushgateway(cfg config.PushgatewayConfig) Sink {
	return &pushgatewaySink{cfg: cfg, client: util.NewHTTPClient(cfg.Timeout)}
}

func (p *pushgatewaySink) Name() string { return "pushgateway" }

// Push replaces the job's series for this category's grouping key.
func (p *pushgatewaySink) Push(ctx context.Context, run Run) error {
	if run.Metrics == nil {
		return errors.New("no metrics batch")
	}
	err := push.New(p.cfg.URL, p.cfg.Job).
		Client(p.client).
		Gatherer(run.Metrics.Registry()).
		Grouping("instance", metrics.GroupingKey(run.Category)).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushgateway push: %w", err)
	}
	return nil
}
