package metrics

import "github.com/prometheus/client_golang/prometheus"

// ImportMetrics tracks campaign CSV imports.
type ImportMetrics struct {
	rows     prometheus.Counter
	imports  prometheus.Counter
	failures *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rows := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metrics_import_rows_total",
		Help:      "Campaign metric rows stored from uploads.",
	})
	imports := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metrics_imports_total",
		Help:      "Successful campaign metric uploads.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metrics_import_failures_total",
		Help:      "Failed campaign metric uploads by error code.",
	}, []string{"code"})
	reg.MustRegister(rows, imports, failures)
	return &ImportMetrics{rows: rows, imports: imports, failures: failures}
}

// IncImported records one successful upload of n rows.
func (m *ImportMetrics) IncImported(n int) {
	if m == nil || m.rows == nil {
		return
	}
	m.imports.Inc()
	m.rows.Add(float64(n))
}

// IncFailure records a failed upload tagged with the error code.
func (m *ImportMetrics) IncFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}
