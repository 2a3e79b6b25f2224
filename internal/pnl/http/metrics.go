package pnlhttp

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu          sync.Mutex
	metricsInitialized bool
	metricsError       error

	reportBuildHistogram *prometheus.HistogramVec
	dashboardPushCounter *prometheus.CounterVec
)

// SetupMetrics registers Prometheus collectors observing report builds and
// cross-module pushes. Registration happens once; later calls are no-ops.
func SetupMetrics(reg prometheus.Registerer) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsInitialized {
		return metricsError
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reportBuildHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldline_pnl_report_build_duration_seconds",
		Help:    "Duration required to build P&L reports.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	dashboardPushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldline_pnl_dashboard_pushes_total",
		Help: "Number of accepted cross-module cost pushes.",
	}, []string{"module"})

	for _, collector := range []prometheus.Collector{reportBuildHistogram, dashboardPushCounter} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				switch c := already.ExistingCollector.(type) {
				case *prometheus.HistogramVec:
					reportBuildHistogram = c
				case *prometheus.CounterVec:
					dashboardPushCounter = c
				default:
					metricsError = fmt.Errorf("pnl metrics: unexpected collector type %T", c)
				}
				continue
			}
			metricsError = err
			reportBuildHistogram = nil
			dashboardPushCounter = nil
			break
		}
	}

	metricsInitialized = true
	return metricsError
}

func observeReportBuild(report string, duration time.Duration) {
	if reportBuildHistogram == nil {
		return
	}
	reportBuildHistogram.WithLabelValues(report).Observe(duration.Seconds())
}

func recordDashboardPush(module string) {
	if dashboardPushCounter == nil {
		return
	}
	dashboardPushCounter.WithLabelValues(module).Inc()
}
