package sink

import (
	"context"
	"log"
	"strings"

	"github.com/agungatd/daily-data-fetcher/internal/config"
)

// FromConfig builds every sink that has an address configured. A sink that
// cannot be constructed is logged and left out.
func FromConfig(ctx context.Context, cfg *config.Config) []Sink {
	var sinks []Sink
	if strings.TrimSpace(cfg.Push.URL) != "" {
		sinks = append(sinks, NewPushgateway(cfg.Push))
	}
	if strings.TrimSpace(cfg.Victoria.URL) != "" {
		sinks = append(sinks, NewVictoria(cfg.Victoria))
	}
	if strings.TrimSpace(cfg.Loki.URL) != "" {
		sinks = append(sinks, NewLoki(cfg.Loki))
	}
	if strings.TrimSpace(cfg.Archive.Bucket) != "" {
		s, err := NewS3(ctx, cfg.Archive)
		if err != nil {
			log.Printf("init s3 sink: %v (archive disabled)", err)
		} else {
			sinks = append(sinks, s)
		}
	}
	return sinks
}
