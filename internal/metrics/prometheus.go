// Package metrics exposes simulation counters and gauges to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FinSim/internal/model"
)

var (
	jobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_job_runs_total",
			Help: "Scheduled and manual job executions",
		},
		[]string{"job", "status"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsim_job_duration_seconds",
			Help:    "Job execution time in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"job"},
	)

	rowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_rows_written_total",
			Help: "Rows persisted per table",
		},
		[]string{"table"},
	)

	totalBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finsim_total_balance",
		Help: "Sum of simulated user balances after the latest daily run",
	})

	marketPerformance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finsim_market_performance_percent",
		Help: "Mean asset variation of the latest daily run",
	})

	alertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_alerts_total",
			Help: "Alerts raised by daily runs",
		},
		[]string{"type"},
	)

	eventsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsim_events_fired_total",
			Help: "Simulated events fired",
		},
		[]string{"type"},
	)
)

// ObserveJob records one job execution.
func ObserveJob(job string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	jobRuns.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// ObserveMarket counts market rows written outside a daily batch.
func ObserveMarket(rows int) {
	rowsWritten.WithLabelValues("market_simulations").Add(float64(rows))
}

// ObserveDay records a committed daily batch.
func ObserveDay(b *model.DayBatch) {
	rowsWritten.WithLabelValues("market_simulations").Add(float64(len(b.Markets)))
	rowsWritten.WithLabelValues("simulated_events").Add(float64(len(b.Events)))
	rowsWritten.WithLabelValues("simulated_transactions").Add(float64(len(b.Transactions)))
	rowsWritten.WithLabelValues("daily_simulations").Inc()

	totalBalance.Set(b.Summary.TotalBalance.InexactFloat64())
	marketPerformance.Set(b.Summary.MarketPerformance)
	for _, a := range b.Summary.Alerts {
		alertsRaised.WithLabelValues(string(a.Type)).Inc()
	}
	for _, e := range b.Events {
		eventsFired.WithLabelValues(string(e.Type)).Inc()
	}
}
