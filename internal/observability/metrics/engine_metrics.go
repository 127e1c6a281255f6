package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the const labels stamped onto every engine metric.
type Config struct {
	ServiceName string
	Environment string
}

// EngineMetrics captures per-module batch run outcomes.
type EngineMetrics struct {
	moduleRuns     *prometheus.CounterVec
	moduleDuration *prometheus.HistogramVec
	diagnostics    *prometheus.CounterVec
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

// Engine returns the process-wide engine metrics.
func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

// EngineWithConfig initializes the engine metrics on first use.
func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

// ResetEngineMetricsForTest clears the singleton between test registries.
func ResetEngineMetricsForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "catermetrics"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	moduleRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "catermetrics_module_runs_total",
			Help:        "Total analytics module runs by result.",
			ConstLabels: constLabels,
		},
		[]string{"module", "result"}, // success | failed | cancelled
	)

	moduleDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "catermetrics_module_duration_seconds",
			Help:        "Wall time spent computing one module's report.",
			Buckets:     []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60},
			ConstLabels: constLabels,
		},
		[]string{"module"},
	)

	diagnostics := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "catermetrics_diagnostics_total",
			Help:        "Per-entity failures isolated during batch runs.",
			ConstLabels: constLabels,
		},
		[]string{"module"},
	)

	registerer.MustRegister(moduleRuns, moduleDuration, diagnostics)

	return &EngineMetrics{
		moduleRuns:     moduleRuns,
		moduleDuration: moduleDuration,
		diagnostics:    diagnostics,
	}
}

// ObserveModuleRun records one module run outcome and its duration.
func (m *EngineMetrics) ObserveModuleRun(module, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.moduleRuns.WithLabelValues(module, result).Inc()
	m.moduleDuration.WithLabelValues(module).Observe(elapsed.Seconds())
}

// AddDiagnostics counts isolated per-entity failures.
func (m *EngineMetrics) AddDiagnostics(module string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.diagnostics.WithLabelValues(module).Add(float64(count))
}
