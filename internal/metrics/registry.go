package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/puzpuzpuz/xsync/v4"
)

// Help texts attached to counters created from the enum catalog or on demand.
const (
	GenericUserHelp  = "Generic KeyCloak User event"
	GenericAdminHelp = "Generic KeyCloak Admin event"
)

// ErrLabelMismatch is returned when a series is observed with a tag key set
// different from the one its name was first bound to.
var ErrLabelMismatch = errors.New("tag keys do not match metric definition")

// Counter is a named counter definition. Its label keys are fixed by the
// first observation; the underlying family is registered at that point.
type Counter struct {
	name string
	help string
	reg  prom.Registerer

	once sync.Once
	vec  *prom.CounterVec
	keys []string
	err  error
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Help returns the help text the counter was created with.
func (c *Counter) Help() string { return c.help }

func (c *Counter) bind(keys []string) error {
	c.once.Do(func() {
		vec := prom.NewCounterVec(prom.CounterOpts{Name: c.name, Help: c.help}, keys)
		if err := c.reg.Register(vec); err != nil {
			var are prom.AlreadyRegisteredError
			if !errors.As(err, &are) {
				c.err = fmt.Errorf("register counter %s: %w", c.name, err)
				return
			}
			existing, ok := are.ExistingCollector.(*prom.CounterVec)
			if !ok {
				c.err = fmt.Errorf("register counter %s: name taken by another collector", c.name)
				return
			}
			vec = existing
		}
		c.vec = vec
		c.keys = append([]string(nil), keys...)
	})
	if c.err != nil {
		return c.err
	}
	if !sameKeys(c.keys, keys) {
		return fmt.Errorf("%w: %s has %v, got %v", ErrLabelMismatch, c.name, c.keys, keys)
	}
	return nil
}

// Inc adds one to the series identified by tags.
func (c *Counter) Inc(tags Tags) error {
	if err := c.bind(tags.Keys()); err != nil {
		return err
	}
	m, err := c.vec.GetMetricWith(tags.Map())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLabelMismatch, c.name, err)
	}
	m.Inc()
	return nil
}

// Option configures a Registry.
type Option func(*Registry)

// WithRuntimeCollectors registers the Go runtime and process collectors
// next to the event series.
func WithRuntimeCollectors() Option {
	return func(r *Registry) {
		r.prom.MustRegister(
			promcollect.NewGoCollector(),
			promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
		)
	}
}

// Registry owns every counter and gauge created for ingested events. It is
// safe for concurrent use; definitions are created at most once per name.
type Registry struct {
	prom     *prom.Registry
	counters *xsync.Map[string, *Counter]
	gauges   *xsync.Map[string, *gaugeFamily]
}

// NewRegistry returns an empty registry backed by its own Prometheus registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		prom:     prom.NewRegistry(),
		counters: xsync.NewMap[string, *Counter](),
		gauges:   xsync.NewMap[string, *gaugeFamily](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prometheus exposes the underlying registry for handlers and pushers.
func (r *Registry) Prometheus() *prom.Registry { return r.prom }

// GetOrCreateCounter returns the counter called name, creating it with help
// when absent. Concurrent callers racing on a new name all receive the same
// definition and the help of the winner is kept.
func (r *Registry) GetOrCreateCounter(name, help string) *Counter {
	if c, ok := r.counters.Load(name); ok {
		return c
	}
	c, _ := r.counters.LoadOrStore(name, &Counter{name: name, help: help, reg: r.prom})
	return c
}

// Lookup returns the counter called name without creating it.
func (r *Registry) Lookup(name string) (*Counter, bool) {
	return r.counters.Load(name)
}

// CounterNames lists every defined counter name in lexical order.
func (r *Registry) CounterNames() []string {
	names := make([]string, 0, r.counters.Size())
	r.counters.Range(func(name string, _ *Counter) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// IncrementCounter adds one to the series name{tags}. Unknown names are
// created on the fly with the generic user-event help.
func (r *Registry) IncrementCounter(name string, tags Tags) error {
	return r.GetOrCreateCounter(name, GenericUserHelp).Inc(tags)
}

// Gather implements prometheus.Gatherer.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.prom.Gather()
}

// Sample is one materialised series value.
type Sample struct {
	Identity
	Value float64
}

// Snapshot returns every counter and gauge series currently known. Gauge
// capture functions run during the call.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.prom.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			s := Sample{Identity: Identity{Name: mf.GetName(), Tags: TagsFromMap(labels)}}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_UNTYPED:
				s.Value = m.GetUntyped().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// Value returns the current value of name{tags}.
func (r *Registry) Value(name string, tags Tags) (float64, bool) {
	samples, err := r.Snapshot()
	if err != nil {
		return 0, false
	}
	want := Identity{Name: name, Tags: tags}
	for _, s := range samples {
		if s.Identity.Equal(want) {
			return s.Value, true
		}
	}
	return 0, false
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
