package metrics

import (
	"bufio"
	"fmt"
	"io"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Exporter writes a registry in the Prometheus text exposition format.
type Exporter struct {
	gatherer prom.Gatherer
}

// NewExporter returns an exporter reading from g.
func NewExporter(g prom.Gatherer) *Exporter {
	return &Exporter{gatherer: g}
}

// WriteExposition writes every family to w and flushes before returning.
// Families gathered alongside an error are not written.
func (e *Exporter) WriteExposition(w io.Writer) error {
	families, err := e.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	bw := bufio.NewWriter(w)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(bw, mf); err != nil {
			return fmt.Errorf("write family %s: %w", mf.GetName(), err)
		}
	}
	return bw.Flush()
}
