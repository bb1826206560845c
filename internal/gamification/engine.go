// Package gamification derives points and badges from ledger state.
// Badge membership is a pure function of transaction count and point
// total; earned badges are never revoked.
package gamification

import (
	"time"

	"thrifty/internal/core"
)

// PointsPerTransaction is granted once per successful add. The increment
// happens at the ledger call site; Evaluate only derives badges from the
// resulting values.
const PointsPerTransaction = 10

// PointsPerLevel sets the level curve: level 1 starts at 0 points.
const PointsPerLevel = 100

// Rule unlocks a badge once its condition holds. Rules are evaluated in
// declaration order, which fixes the order newly unlocked badges are
// reported in.
type Rule struct {
	Name        string
	Description string
	Icon        string
	Unlocked    func(transactionCount, points int) bool
}

var rules = []Rule{
	{
		Name:        "Novice Tracker",
		Description: "Record your first transaction.",
		Icon:        "medal",
		Unlocked:    func(count, _ int) bool { return count >= 1 },
	},
	{
		Name:        "Budget Master",
		Description: "Track ten transactions.",
		Icon:        "trophy",
		Unlocked:    func(count, _ int) bool { return count >= 10 },
	},
	{
		Name:        "Point Collector",
		Description: "Collect 100 points.",
		Icon:        "star",
		Unlocked:    func(_, points int) bool { return points >= PointsPerLevel },
	},
}

// Rules exposes the badge catalog for display purposes.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Result is the outcome of one evaluation. Badges is the full set after
// the monotonic union; Unlocked lists only the badges this evaluation
// added, in rule-declaration order, so the caller can notify once each.
type Result struct {
	Badges   []core.Badge
	Unlocked []core.Badge
}

// Evaluate re-runs every rule against the given counters and merges newly
// unlocked badges into the owned set. Owned badges are kept even when a
// rule would no longer award them, so re-running with the same inputs
// always yields a superset-or-equal set.
func Evaluate(transactionCount, points int, owned []core.Badge, at time.Time) Result {
	res := Result{Badges: append([]core.Badge(nil), owned...)}
	have := make(map[string]struct{}, len(owned))
	for _, b := range owned {
		have[b.Name] = struct{}{}
	}
	for _, r := range rules {
		if _, ok := have[r.Name]; ok {
			continue
		}
		if !r.Unlocked(transactionCount, points) {
			continue
		}
		badge := core.Badge{
			Name:        r.Name,
			Description: r.Description,
			Icon:        r.Icon,
			EarnedAt:    at,
		}
		have[r.Name] = struct{}{}
		res.Badges = append(res.Badges, badge)
		res.Unlocked = append(res.Unlocked, badge)
	}
	return res
}

// Level is 1-based: 100 points per level.
func Level(points int) int {
	return points/PointsPerLevel + 1
}

// Progress is the point count towards the next level.
func Progress(points int) int {
	return points % PointsPerLevel
}
