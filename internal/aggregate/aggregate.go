// Package aggregate derives display metrics from stored OKR values. Every
// function is pure and degrades to a zero value instead of failing.
package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// DefaultAtRiskThreshold is the progress below which the summary view counts
// an objective as at risk.
const DefaultAtRiskThreshold = 70

// statusPrecedence lists statuses from most to least severe.
var statusPrecedence = []domain.Status{
	domain.StatusOverdue,
	domain.StatusAtRisk,
	domain.StatusOnTrack,
	domain.StatusAhead,
	domain.StatusCompleted,
}

// Round rounds half up to the nearest integer. Non-finite input yields 0.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

// KeyResultPercent is current/target as a rounded percentage. Over-achieved
// key results report more than 100.
func KeyResultPercent(kr domain.KeyResult) int {
	if !(kr.TargetValue > 0) || math.IsInf(kr.TargetValue, 0) {
		return 0
	}
	return Round(kr.CurrentValue / kr.TargetValue * 100)
}

// ObjectivePercent averages KeyResultPercent over the objective's key results.
func ObjectivePercent(keyResults []domain.KeyResult) int {
	if len(keyResults) == 0 {
		return 0
	}
	sum := 0
	for _, kr := range keyResults {
		sum += KeyResultPercent(kr)
	}
	return Round(float64(sum) / float64(len(keyResults)))
}

// WorstStatus returns the most severe status among the key results, or
// on_track when none is recognized.
func WorstStatus(keyResults []domain.KeyResult) domain.Status {
	statuses := make([]domain.Status, 0, len(keyResults))
	for _, kr := range keyResults {
		statuses = append(statuses, kr.Status)
	}
	return WorstOf(statuses...)
}

// WorstOf applies the severity precedence to raw statuses.
func WorstOf(statuses ...domain.Status) domain.Status {
	present := make(map[domain.Status]struct{}, len(statuses))
	for _, s := range statuses {
		present[s] = struct{}{}
	}
	for _, s := range statusPrecedence {
		if _, ok := present[s]; ok {
			return s
		}
	}
	return domain.StatusOnTrack
}

// TeamAverageProgress is the rounded mean of stored objective progress.
func TeamAverageProgress(objectives []domain.Objective) int {
	if len(objectives) == 0 {
		return 0
	}
	sum := 0
	for _, o := range objectives {
		sum += o.Progress
	}
	return Round(float64(sum) / float64(len(objectives)))
}

// AtRiskCount counts objectives whose progress is strictly below threshold.
// This is the summary-view signal and is independent of the stored status;
// see CountByStatus for the status-based count.
func AtRiskCount(objectives []domain.Objective, threshold int) int {
	count := 0
	for _, o := range objectives {
		if o.Progress < threshold {
			count++
		}
	}
	return count
}

// CountByStatus counts objectives carrying status.
func CountByStatus(objectives []domain.Objective, status domain.Status) int {
	count := 0
	for _, o := range objectives {
		if o.Status == status {
			count++
		}
	}
	return count
}

// StatusHistogram counts objectives per status.
func StatusHistogram(objectives []domain.Objective) map[domain.Status]int {
	hist := make(map[domain.Status]int, len(statusPrecedence))
	for _, s := range statusPrecedence {
		hist[s] = 0
	}
	for _, o := range objectives {
		hist[o.Status]++
	}
	return hist
}

// ClampPercent bounds a percentage to [0, 100] for progress bars.
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// HumanizeRecency renders how long ago ts was relative to now. A nil
// timestamp yields nil.
func HumanizeRecency(ts *time.Time, now time.Time) *string {
	if ts == nil {
		return nil
	}
	elapsed := now.Sub(*ts)
	var out string
	switch {
	case elapsed < time.Hour:
		out = "Just now"
	case elapsed < 24*time.Hour:
		out = plural(int(elapsed/time.Hour), "hour")
	default:
		out = plural(int(elapsed/(24*time.Hour)), "day")
	}
	return &out
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
