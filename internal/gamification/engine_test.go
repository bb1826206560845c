package gamification

import (
	"testing"
	"time"

	"thrifty/internal/core"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func names(badges []core.Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.Name
	}
	return out
}

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		name   string
		count  int
		points int
		want   []string
	}{
		{"nothing yet", 0, 0, nil},
		{"first transaction", 1, 10, []string{"Novice Tracker"}},
		{"nine transactions", 9, 90, []string{"Novice Tracker"}},
		{"ten transactions", 10, 100, []string{"Novice Tracker", "Budget Master", "Point Collector"}},
		{"points only", 2, 100, []string{"Novice Tracker", "Point Collector"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.count, tc.points, nil, now)
			got := names(res.Badges)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestEvaluateMonotonic(t *testing.T) {
	// Earned badges survive inputs that would no longer award them.
	first := Evaluate(10, 100, nil, now)
	if len(first.Badges) != 3 {
		t.Fatalf("expected all badges, got %v", names(first.Badges))
	}
	second := Evaluate(0, 0, first.Badges, now)
	if len(second.Badges) != 3 {
		t.Fatalf("badges were revoked: %v", names(second.Badges))
	}
	if len(second.Unlocked) != 0 {
		t.Fatalf("nothing new should unlock, got %v", names(second.Unlocked))
	}
}

func TestEvaluateReportsOnlyNewBadges(t *testing.T) {
	first := Evaluate(1, 10, nil, now)
	if got := names(first.Unlocked); len(got) != 1 || got[0] != "Novice Tracker" {
		t.Fatalf("expected only Novice Tracker, got %v", got)
	}
	second := Evaluate(10, 100, first.Badges, now)
	got := names(second.Unlocked)
	if len(got) != 2 || got[0] != "Budget Master" || got[1] != "Point Collector" {
		t.Fatalf("expected Budget Master then Point Collector, got %v", got)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	res := Evaluate(5, 50, nil, now)
	again := Evaluate(5, 50, res.Badges, now)
	if len(again.Unlocked) != 0 {
		t.Fatalf("re-evaluation with same inputs unlocked %v", names(again.Unlocked))
	}
	if len(again.Badges) != len(res.Badges) {
		t.Fatalf("badge set changed: %v -> %v", names(res.Badges), names(again.Badges))
	}
}

func TestLevelAndProgress(t *testing.T) {
	cases := []struct {
		points, level, progress int
	}{
		{0, 1, 0},
		{10, 1, 10},
		{99, 1, 99},
		{100, 2, 0},
		{250, 3, 50},
	}
	for _, tc := range cases {
		if got := Level(tc.points); got != tc.level {
			t.Fatalf("Level(%d) = %d, expected %d", tc.points, got, tc.level)
		}
		if got := Progress(tc.points); got != tc.progress {
			t.Fatalf("Progress(%d) = %d, expected %d", tc.points, got, tc.progress)
		}
	}
}

func TestBadgeCatalogHasDescriptionsAndIcons(t *testing.T) {
	for _, r := range Rules() {
		if r.Name == "" || r.Description == "" || r.Icon == "" {
			t.Fatalf("incomplete catalog entry %+v", r)
		}
	}
}
