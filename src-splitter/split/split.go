// The `split` package walks the upstream calendar once, assigns every
// event to a per-course output feed and applies the course's rewrite
// rules along the way.
package split

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"

	"github.com/uptrace/bun"

	"icalsplit/src-splitter/ical"
	"icalsplit/src-splitter/model"
	"icalsplit/src-splitter/rewrite"
	"icalsplit/src-splitter/rules"
	"icalsplit/src-splitter/utils"
)

// Stats counts one splitting pass. Filtered is the subset of Total that
// carried a recognizable course code but was excluded by an item's match
// strategies.
type Stats struct {
	Total    int
	Kept     int
	Filtered int
}

// The terminal outcome for one event. Course-less and panicking events are
// dropped without counting as filtered.
type outcome int

const (
	kept outcome = iota
	droppedNoCourse
	droppedFiltered
)

// Split buckets the calendar's events by detected course code. The bucket
// for a course is created the moment its code is first seen, so a course
// whose every event is filtered still gets an (empty) output feed. A
// panic while processing one event is logged and skips only that event.
func Split(cal *ical.Calendar, rulesByCourse map[string]*rules.CourseRules) (map[string]*ical.Feed, Stats) {
	buckets := make(map[string]*ical.Feed)
	var stats Stats

	for _, event := range cal.Events {
		stats.Total++
		result := func() (result outcome) {
			defer func() {
				if r := recover(); r != nil {
					result = droppedNoCourse
					slog.Error("skipping event after panic",
						"summary", event.Summary,
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			return splitOne(cal, event, rulesByCourse, buckets)
		}()
		switch result {
		case kept:
			stats.Kept++
		case droppedFiltered:
			stats.Filtered++
		}
	}
	return buckets, stats
}

// splitOne places a single event.
func splitOne(cal *ical.Calendar, event ical.Event, rulesByCourse map[string]*rules.CourseRules, buckets map[string]*ical.Feed) outcome {
	course := rewrite.DetectCourse(event.Summary, event.Description)
	if course == "" {
		return droppedNoCourse
	}
	feed, ok := buckets[course]
	if !ok {
		feed = cal.NewFeed(course)
		buckets[course] = feed
	}

	cr := rulesByCourse[course]
	number, kind := 0, ""
	if cr != nil {
		number, kind = rewrite.ExtractNumberAndKind(event.Summary, cr)
		keep, resolved := applyStrategies(cr, kind, number, event)
		if !keep {
			return droppedFiltered
		}
		number = resolved
	}

	summary, description := rewrite.RewriteResolved(
		event.Summary, event.Description, course, cr, number, kind)
	feed.Add(event, summary, description)
	return kept
}

// applyStrategies runs the event type's match strategies. For a numbered
// event the item with that number decides; for an unnumbered event the
// strategy-bearing items are scanned in document order and the first match
// donates its number. An event type with no strategies keeps everything.
func applyStrategies(cr *rules.CourseRules, kind string, number int, event ical.Event) (keep bool, resolved int) {
	if kind == "" {
		return true, number
	}
	var et *rules.EventType
	for _, candidate := range cr.EventTypes {
		if candidate.Type == kind {
			et = candidate
			break
		}
	}
	if et == nil || !et.HasStrategies() {
		return true, number
	}

	if number != 0 {
		item := et.Item(number)
		if item == nil {
			return true, number
		}
		return item.Matches(event.Summary, event.Description, event.Location, event.Start), number
	}

	for _, item := range et.Items {
		if len(item.Strategies) == 0 {
			continue
		}
		if item.Matches(event.Summary, event.Description, event.Location, event.Start) {
			return true, item.Number
		}
	}
	return false, 0
}

// WriteFeeds serializes every bucket into feedsDir as
// `<course>--<token>.ics`, minting a token per course on first sight. A
// single feed failing to write is logged and does not abort the rest.
func WriteFeeds(ctx context.Context, db bun.IDB, buckets map[string]*ical.Feed, feedsDir string) (int, error) {
	courses := make([]string, 0, len(buckets))
	for course := range buckets {
		courses = append(courses, course)
	}
	sort.Strings(courses)

	written := 0
	for _, course := range courses {
		token, err := model.EnsureToken(ctx, db, course)
		if err != nil {
			return written, err
		}
		name := course + "--" + token + ".ics"
		path := filepath.Join(feedsDir, name)
		if err := os.WriteFile(path, []byte(buckets[course].Serialize()), 0644); err != nil {
			slog.Warn("can't write feed", "file", utils.Redact(name), "error", err)
			continue
		}
		slog.Info("wrote feed", "file", utils.Redact(name))
		written++
	}
	return written, nil
}
