package split

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"icalsplit/src-splitter/fetch"
	"icalsplit/src-splitter/ical"
	"icalsplit/src-splitter/model"
	"icalsplit/src-splitter/rules"
	"icalsplit/src-splitter/utils"
)

// ErrUpstreamParse marks an upstream payload that is not valid ICS. The
// caller maps this to its own exit code.
var ErrUpstreamParse = errors.New("upstream payload is not a valid calendar")

// Report summarizes one refresh pass.
type Report struct {
	Stats        Stats
	Courses      int
	FeedsWritten int

	// Unchanged is set when the upstream didn't change (or couldn't be
	// reached) and no regeneration happened.
	Unchanged bool

	// FetchFailed is set when the upstream couldn't be fetched at all.
	FetchFailed bool
}

// Run performs one full refresh: fetch the upstream if it changed, load
// the rule documents, split, write the feeds and record the run. A fetch
// failure is logged and treated as "nothing to do" so a flaky upstream
// never wedges the serve loop.
func Run(ctx context.Context, as *utils.AppState) (*Report, error) {
	startedAt := time.Now()

	fetcher := fetch.New(as.BunDb)
	body, err := fetcher.FetchIfChanged(ctx,
		as.Config.GetSourceIcsUrl(), as.Config.GetLocalUpstreamIcs())
	if err != nil {
		slog.Error("upstream fetch failed, keeping previous feeds", "error", err)
		return &Report{Unchanged: true, FetchFailed: true}, nil
	}
	if body == nil {
		return &Report{Unchanged: true}, nil
	}

	cal, err := ical.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamParse, err)
	}

	rulesByCourse := rules.LoadDirectory(as.Config.GetEventsDir())

	if err := os.MkdirAll(as.Config.GetFeedsDir(), 0755); err != nil {
		return nil, fmt.Errorf("split.Run: can't create feeds dir: %w", err)
	}

	buckets, stats := Split(cal, rulesByCourse)
	written, err := WriteFeeds(ctx, as.BunDb, buckets, as.Config.GetFeedsDir())
	if err != nil {
		return nil, fmt.Errorf("split.Run: %w", err)
	}

	report := &Report{
		Stats:        stats,
		Courses:      len(buckets),
		FeedsWritten: written,
	}

	runLog := model.RunLog{
		StartedAt:      startedAt.Unix(),
		FinishedAt:     time.Now().Unix(),
		EventsTotal:    stats.Total,
		EventsKept:     stats.Kept,
		EventsFiltered: stats.Filtered,
		Courses:        report.Courses,
		FeedsWritten:   written,
	}
	if err := runLog.Insert(ctx, as.BunDb); err != nil {
		slog.Warn("can't record run", "error", err)
	}

	slog.Info("refresh done",
		"events", stats.Total,
		"kept", stats.Kept,
		"filtered", stats.Filtered,
		"courses", report.Courses,
		"feeds", written,
		"took", time.Since(startedAt).Round(time.Millisecond).String())
	return report, nil
}
