package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v4"
)

// gaugeFamily is a collector for callback gauges sharing one name. Each
// series holds a capture function that is evaluated on every scrape.
type gaugeFamily struct {
	name string
	help string
	reg  prom.Registerer

	once sync.Once
	desc *prom.Desc
	keys []string
	err  error

	series *xsync.Map[string, *gaugeSeries]
}

type gaugeSeries struct {
	values  []string
	capture atomic.Pointer[func() float64]
}

func newGaugeFamily(name, help string, reg prom.Registerer) *gaugeFamily {
	return &gaugeFamily{
		name:   name,
		help:   help,
		reg:    reg,
		series: xsync.NewMap[string, *gaugeSeries](),
	}
}

func (g *gaugeFamily) bind(keys []string) error {
	g.once.Do(func() {
		g.desc = prom.NewDesc(g.name, g.help, keys, nil)
		g.keys = append([]string(nil), keys...)
		if err := g.reg.Register(g); err != nil {
			var are prom.AlreadyRegisteredError
			if errors.As(err, &are) {
				err = fmt.Errorf("name taken by another collector")
			}
			g.err = fmt.Errorf("register gauge %s: %w", g.name, err)
		}
	})
	if g.err != nil {
		return g.err
	}
	if !sameKeys(g.keys, keys) {
		return fmt.Errorf("%w: %s has %v, got %v", ErrLabelMismatch, g.name, g.keys, keys)
	}
	return nil
}

// set stores capture for the series identified by tags, replacing any
// function bound earlier.
func (g *gaugeFamily) set(tags Tags, capture func() float64) error {
	if err := g.bind(tags.Keys()); err != nil {
		return err
	}
	s, _ := g.series.LoadOrStore(tags.key(), &gaugeSeries{values: tags.Values()})
	s.capture.Store(&capture)
	return nil
}

// Describe implements prometheus.Collector.
func (g *gaugeFamily) Describe(ch chan<- *prom.Desc) {
	ch <- g.desc
}

// Collect implements prometheus.Collector.
func (g *gaugeFamily) Collect(ch chan<- prom.Metric) {
	g.series.Range(func(_ string, s *gaugeSeries) bool {
		capture := s.capture.Load()
		if capture == nil {
			return true
		}
		m, err := prom.NewConstMetric(g.desc, prom.GaugeValue, (*capture)(), s.values...)
		if err != nil {
			m = prom.NewInvalidMetric(g.desc, err)
		}
		ch <- m
		return true
	})
}

// RegisterGauge binds capture to name{tags}. Repeated calls for the same
// identity replace the capture function instead of adding a series.
func (r *Registry) RegisterGauge(name, help string, tags Tags, capture func() float64) error {
	if capture == nil {
		return fmt.Errorf("register gauge %s: nil capture function", name)
	}
	g, ok := r.gauges.Load(name)
	if !ok {
		g, _ = r.gauges.LoadOrStore(name, newGaugeFamily(name, help, r.prom))
	}
	return g.set(tags, capture)
}

// GaugeNames lists every defined gauge name in lexical order.
func (r *Registry) GaugeNames() []string {
	names := make([]string, 0, r.gauges.Size())
	r.gauges.Range(func(name string, _ *gaugeFamily) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
