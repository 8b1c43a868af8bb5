package monitor

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// DBStatements counts statements per table, operation and outcome.
	DBStatements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "db_statements_total",
			Help:      "Total number of database statements by table and operation",
		},
		[]string{"table", "operation", "result"},
	)

	// ReportDuration tracks how long each rollup takes to assemble.
	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "report_duration_seconds",
			Help:      "Time spent building aggregate reports",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	// CronRuns counts scheduled job executions.
	CronRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "cron_runs_total",
			Help:      "Total number of scheduled job runs",
		},
		[]string{"job", "result"},
	)
)

//nolint:gochecknoinits // Collectors must be registered once per process.
func init() {
	Registry.MustRegister(
		DBStatements,
		ReportDuration,
		CronRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveReport records the time elapsed since start for a named report.
func ObserveReport(report string, start time.Time) {
	ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// ObserveCron records the outcome of a scheduled job.
func ObserveCron(job string, err error) {
	CronRuns.WithLabelValues(job, result(err)).Inc()
}

func result(err error) string {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "error"
	}
	return "ok"
}
