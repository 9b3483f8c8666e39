// The `metric` package exposes refresh statistics on /metrics.
package metric

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"icalsplit/src-splitter/split"
)

var (
	eventsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "icalsplit_events_total",
		Help: "Events seen in the upstream calendar during the last refresh",
	})
	eventsKept = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "icalsplit_events_kept",
		Help: "Events placed into an output feed during the last refresh",
	})
	eventsFiltered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "icalsplit_events_filtered",
		Help: "Events excluded by match strategies during the last refresh",
	})
	courses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "icalsplit_courses",
		Help: "Distinct courses detected during the last refresh",
	})
	feedsWritten = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "icalsplit_feeds_written",
		Help: "Feed files written during the last refresh",
	})
	refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "icalsplit_refreshes_total",
		Help: "Refresh passes that regenerated the feeds",
	})
	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "icalsplit_fetch_failures_total",
		Help: "Refresh passes that couldn't reach the upstream",
	})
)

func Init() {
	for _, collector := range []prometheus.Collector{
		eventsTotal, eventsKept, eventsFiltered, courses, feedsWritten,
		refreshes, fetchFailures,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				slog.Error("can't register metric", "error", err)
			}
		}
	}
	slog.Debug("metrics registered")
}

// Record publishes one refresh report. A pass that found the upstream
// unchanged leaves the gauges at their previous values.
func Record(report *split.Report) {
	if report == nil {
		return
	}
	if report.FetchFailed {
		fetchFailures.Inc()
	}
	if report.Unchanged {
		return
	}
	eventsTotal.Set(float64(report.Stats.Total))
	eventsKept.Set(float64(report.Stats.Kept))
	eventsFiltered.Set(float64(report.Stats.Filtered))
	courses.Set(float64(report.Courses))
	feedsWritten.Set(float64(report.FeedsWritten))
	refreshes.Inc()
}
