// ABOUTME: Prometheus counters for party session activity
// ABOUTME: Tracks logins, party lifecycle, sweeps, and cascaded media deletes; totals survive restarts via snapshots

package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// SlotKey is the slot holding the cumulative snapshot between processes.
const SlotKey = "metrics"

// Login results used as the "result" label.
const (
	LoginSuccess            = "success"
	LoginNotFound           = "not_found"
	LoginInvalidCredentials = "invalid_credentials"
	LoginInvalid            = "validation"
)

// Metrics holds the session counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Logins         *prometheus.CounterVec
	PartiesCreated prometheus.Counter
	PartiesDeleted prometheus.Counter
	PartiesExpired prometheus.Counter
	MediaRemoved   *prometheus.CounterVec
	Sweeps         prometheus.Counter

	reg *prometheus.Registry
}

// New creates the counters and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reg: reg,
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partycollage_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		PartiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partycollage_parties_created_total",
			Help: "Parties created",
		}),
		PartiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partycollage_parties_deleted_total",
			Help: "Parties deleted explicitly",
		}),
		PartiesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partycollage_parties_expired_total",
			Help: "Parties removed by the expiration sweep",
		}),
		MediaRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partycollage_media_removed_total",
				Help: "Media items removed as a side effect of party removal",
			},
			[]string{"reason"}, // delete, expired
		),
		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partycollage_sweeps_total",
			Help: "Expiration sweeps run, including those that found nothing expired",
		}),
	}

	reg.MustRegister(
		m.Logins,
		m.PartiesCreated,
		m.PartiesDeleted,
		m.PartiesExpired,
		m.MediaRemoved,
		m.Sweeps,
	)
	return m
}

// ObserveLogin counts one login attempt.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

// ObserveCreate counts one created party.
func (m *Metrics) ObserveCreate() {
	if m == nil {
		return
	}
	m.PartiesCreated.Inc()
}

// ObserveDelete counts an explicit party deletion and its cascaded media.
func (m *Metrics) ObserveDelete(mediaRemoved int) {
	if m == nil {
		return
	}
	m.PartiesDeleted.Inc()
	m.MediaRemoved.WithLabelValues("delete").Add(float64(mediaRemoved))
}

// ObserveSweep counts one sweep and what it removed.
func (m *Metrics) ObserveSweep(expired, mediaRemoved int) {
	if m == nil {
		return
	}
	m.Sweeps.Inc()
	m.PartiesExpired.Add(float64(expired))
	m.MediaRemoved.WithLabelValues("expired").Add(float64(mediaRemoved))
}

// Sample is one counter series in a snapshot.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// String renders the sample in exposition style, e.g. name{k="v"} 3.
func (s Sample) String() string {
	if len(s.Labels) == 0 {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := s.Name + "{"
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s=%q", k, s.Labels[k])
	}
	return fmt.Sprintf("%s} %g", out, s.Value)
}

// Snapshot returns the current value of every registered counter series.
func (m *Metrics) Snapshot() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			sample := Sample{Name: mf.GetName(), Value: metric.GetCounter().GetValue()}
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				sample.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					sample.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			samples = append(samples, sample)
		}
	}
	return samples, nil
}

// Restore adds a previous snapshot onto the counters. Unknown series and
// negative values are skipped and reported in the error.
func (m *Metrics) Restore(samples []Sample) error {
	if m == nil {
		return nil
	}

	plain := map[string]prometheus.Counter{
		"partycollage_parties_created_total": m.PartiesCreated,
		"partycollage_parties_deleted_total": m.PartiesDeleted,
		"partycollage_parties_expired_total": m.PartiesExpired,
		"partycollage_sweeps_total":          m.Sweeps,
	}
	vecs := map[string]*prometheus.CounterVec{
		"partycollage_logins_total":        m.Logins,
		"partycollage_media_removed_total": m.MediaRemoved,
	}

	var skipped []string
	for _, s := range samples {
		if s.Value < 0 {
			skipped = append(skipped, s.Name)
			continue
		}
		if c, ok := plain[s.Name]; ok && len(s.Labels) == 0 {
			c.Add(s.Value)
			continue
		}
		vec, ok := vecs[s.Name]
		if !ok {
			skipped = append(skipped, s.Name)
			continue
		}
		c, err := vec.GetMetricWith(prometheus.Labels(s.Labels))
		if err != nil {
			skipped = append(skipped, s.Name)
			continue
		}
		c.Add(s.Value)
	}

	if len(skipped) > 0 {
		return fmt.Errorf("skipped %d unknown or invalid samples: %v", len(skipped), skipped)
	}
	return nil
}

// WriteTextfile writes the counters in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
