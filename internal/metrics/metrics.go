package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Batch holds the measurements of one run in its own registry, so nothing
// leaks between runs or into the default registry.
type Batch struct {
	category string
	reg      *prometheus.Registry

	lastSuccessTS *prometheus.GaugeVec
	fetched       *prometheus.CounterVec
	filtered      *prometheus.CounterVec
	duration      *prometheus.GaugeVec
}

// Sample is one flattened series value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

func NewBatch(namespace, category string) *Batch {
	b := &Batch{category: category, reg: prometheus.NewRegistry()}
	b.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful run",
	}, []string{"category"})
	b.fetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_fetched_total",
		Help:      "Number of entries fetched from the source API",
	}, []string{"category"})
	b.filtered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_filtered_total",
		Help:      "Number of entries matching the category filter",
	}, []string{"category"})
	b.duration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the run in seconds",
	}, []string{"category"})

	b.reg.MustRegister(b.lastSuccessTS, b.fetched, b.filtered, b.duration)
	return b
}

func (b *Batch) Category() string { return b.category }

func (b *Batch) Registry() *prometheus.Registry { return b.reg }

func (b *Batch) AddFetched(n int) { b.fetched.WithLabelValues(b.category).Add(float64(n)) }

func (b *Batch) AddFiltered(n int) { b.filtered.WithLabelValues(b.category).Add(float64(n)) }

func (b *Batch) ObserveDuration(d time.Duration) {
	b.duration.WithLabelValues(b.category).Set(d.Seconds())
}

func (b *Batch) MarkSuccess(t time.Time) {
	b.lastSuccessTS.WithLabelValues(b.category).Set(float64(t.Unix()))
}

// Samples gathers the registry and flattens counters and gauges, sorted by
// name.
func (b *Batch) Samples() ([]Sample, error) {
	families, err := b.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather: %w", err)
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: make(map[string]string, len(m.GetLabel()))}
			for _, lp := range m.GetLabel() {
				s.Labels[lp.GetName()] = lp.GetValue()
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// Dump returns a human-readable snapshot of the batch (for logging).
func (b *Batch) Dump() string {
	samples, err := b.Samples()
	if err != nil {
		return ""
	}
	lines := make([]string, 0, len(samples))
	for _, s := range samples {
		lines = append(lines, fmt.Sprintf("%s{%s} %g", s.Name, FormatLabels(s.Labels), s.Value))
	}
	return strings.Join(lines, "\n")
}

// FormatLabels renders labels as k="v" pairs in key order.
func FormatLabels(labels map[string]string) string {
	ks := make([]string, 0, len(labels))
	for k := range labels {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	b := strings.Builder{}
	for i, k := range ks {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", k, labels[k])
	}
	return b.String()
}

// GroupingKey turns a category into a Pushgateway instance value, so runs
// for different categories keep separate series.
func GroupingKey(category string) string {
	s := strings.ToLower(strings.TrimSpace(category))
	b := strings.Builder{}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
