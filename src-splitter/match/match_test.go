package match_test

import (
	"testing"
	"time"

	"icalsplit/src-splitter/match"
)

// Tuesday 10:15 local time
var tuesdayMorning = time.Date(2025, 9, 2, 10, 15, 0, 0, time.UTC)

func TestTimeStrategyDay(t *testing.T) {
	strategy := match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"day": "tuesday"},
	})
	if !strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected tuesday rule to match a tuesday event")
	}

	strategy = match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"day": "wednesday"},
	})
	if strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected wednesday rule to reject a tuesday event")
	}

	// numeric days count from Monday=0
	strategy = match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"day": float64(1)},
	})
	if !strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected day=1 (tuesday) to match a tuesday event")
	}
}

func TestTimeStrategyRangeEndExclusive(t *testing.T) {
	strategy := match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"start_time": "10:00", "end_time": "12:00"},
	})
	if !strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected 10:15 inside [10:00, 12:00)")
	}

	atEnd := time.Date(2025, 9, 2, 12, 0, 0, 0, time.UTC)
	if strategy.Matches("", "", "", &atEnd) {
		t.Error("expected 12:00 outside [10:00, 12:00), the end is exclusive")
	}

	atStart := time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)
	if !strategy.Matches("", "", "", &atStart) {
		t.Error("expected 10:00 inside [10:00, 12:00), the start is inclusive")
	}
}

func TestTimeStrategyCompactClock(t *testing.T) {
	strategy := match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"start_time": "1000", "end_time": "1200"},
	})
	if !strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected HHMM clocks to parse the same as HH:MM")
	}
}

func TestTimeStrategyDegenerateInputs(t *testing.T) {
	// legacy free-text timeslot never matches
	strategy := match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": "tuesdays at ten",
	})
	if strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected a string timeslot to never match")
	}

	// no timeslot at all matches any event that has a start
	strategy = match.Decode(map[string]any{"strategy": "time"})
	if !strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected a constraint-free time rule to match")
	}
	if strategy.Matches("", "", "", nil) {
		t.Error("expected a time rule to reject events without a start")
	}

	// unknown weekday name matches nothing
	strategy = match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"day": "someday"},
	})
	if strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected an unknown weekday name to never match")
	}

	// invalid clock strings make the whole range unmatchable
	strategy = match.Decode(map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"start_time": "ten", "end_time": "12:00"},
	})
	if strategy.Matches("", "", "", &tuesdayMorning) {
		t.Error("expected an unparseable clock to never match")
	}
}

func TestTextStrategies(t *testing.T) {
	// "description" scans summary and description
	strategy := match.Decode(map[string]any{
		"strategy": "description",
		"pattern":  "group\\s+a",
	})
	if !strategy.Matches("Lab 1 Group A", "", "", nil) {
		t.Error("expected description strategy to scan the summary too")
	}
	if !strategy.Matches("Lab 1", "for Group A only", "", nil) {
		t.Error("expected description strategy to scan the description")
	}
	if strategy.Matches("Lab 1", "for Group B only", "", nil) {
		t.Error("expected no match for group B")
	}

	// "url" only scans the description
	strategy = match.Decode(map[string]any{
		"strategy": "url",
		"pattern":  "zoom\\.us",
	})
	if strategy.Matches("join via zoom.us", "", "", nil) {
		t.Error("expected url strategy to ignore the summary")
	}
	if !strategy.Matches("", "https://kth-se.zoom.us/j/1", "", nil) {
		t.Error("expected url strategy to match the description")
	}

	// invalid regex never matches instead of failing the load
	strategy = match.Decode(map[string]any{
		"strategy": "description",
		"pattern":  "(unclosed",
	})
	if strategy.Matches("(unclosed", "(unclosed", "", nil) {
		t.Error("expected an invalid pattern to never match")
	}
}

func TestLocationStrategy(t *testing.T) {
	strategy := match.Decode(map[string]any{
		"strategy": "location",
		"location": "Ka-209",
	})
	if !strategy.Matches("", "", "Room KA-209, Electrum", nil) {
		t.Error("expected a case-insensitive substring match")
	}
	if strategy.Matches("", "", "Room KA-309", nil) {
		t.Error("expected no match for a different room")
	}

	strategy = match.Decode(map[string]any{"strategy": "location"})
	if strategy.Matches("", "", "anywhere", nil) {
		t.Error("expected an empty location needle to never match")
	}
}

func TestCombinators(t *testing.T) {
	day := map[string]any{
		"strategy": "time",
		"timeslot": map[string]any{"day": "tuesday"},
	}
	groupA := map[string]any{
		"strategy": "description",
		"pattern":  "group a",
	}

	all := match.Decode(map[string]any{
		"strategy":   "all",
		"strategies": []any{day, groupA},
	})
	if !all.Matches("Lab 1 group A", "", "", &tuesdayMorning) {
		t.Error("expected all() to match when every child matches")
	}
	if all.Matches("Lab 1 group B", "", "", &tuesdayMorning) {
		t.Error("expected all() to reject when one child misses")
	}

	anyOf := match.Decode(map[string]any{
		"strategy":   "any",
		"strategies": []any{day, groupA},
	})
	wednesday := tuesdayMorning.Add(24 * time.Hour)
	if !anyOf.Matches("Lab 1 group A", "", "", &wednesday) {
		t.Error("expected any() to match when one child matches")
	}
	if anyOf.Matches("Lab 1 group B", "", "", &wednesday) {
		t.Error("expected any() to reject when no child matches")
	}

	// the empty-children asymmetry: all() is vacuously true, any() is not
	emptyAll := match.Decode(map[string]any{"strategy": "all"})
	if !emptyAll.Matches("", "", "", nil) {
		t.Error("expected all() with no children to match")
	}
	emptyAny := match.Decode(map[string]any{"strategy": "any"})
	if emptyAny.Matches("", "", "", nil) {
		t.Error("expected any() with no children to never match")
	}
}

func TestUnknownStrategyKind(t *testing.T) {
	strategy := match.Decode(map[string]any{"strategy": "astrology"})
	if strategy.Matches("anything", "anything", "anywhere", &tuesdayMorning) {
		t.Error("expected an unknown strategy kind to never match")
	}
}

func TestPriority(t *testing.T) {
	strategy := match.Decode(map[string]any{
		"strategy": "description",
		"pattern":  "x",
		"priority": float64(5),
	})
	if strategy.Priority() != 5 {
		t.Error("expected explicit priority to be kept, got", strategy.Priority())
	}

	strategy = match.Decode(map[string]any{"strategy": "description", "pattern": "x"})
	if strategy.Priority() != match.DefaultPriority {
		t.Error("expected default priority, got", strategy.Priority())
	}
}
