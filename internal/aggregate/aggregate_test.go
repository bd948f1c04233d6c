package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

func kr(current, target float64, status domain.Status) domain.KeyResult {
	return domain.KeyResult{CurrentValue: current, TargetValue: target, Status: status}
}

func objectives(progress ...int) []domain.Objective {
	out := make([]domain.Objective, len(progress))
	for i, p := range progress {
		out[i] = domain.Objective{Progress: p, Status: domain.StatusOnTrack}
	}
	return out
}

// --- KeyResultPercent ---

func TestKeyResultPercent_ZeroTarget(t *testing.T) {
	for _, current := range []float64{0, 5, 1e9, -3} {
		if got := KeyResultPercent(kr(current, 0, "")); got != 0 {
			t.Errorf("KeyResultPercent(%v/0) = %d, want 0", current, got)
		}
	}
}

func TestKeyResultPercent_NonFinite(t *testing.T) {
	cases := []domain.KeyResult{
		kr(math.NaN(), 10, ""),
		kr(10, math.NaN(), ""),
		kr(math.Inf(1), 10, ""),
		kr(10, math.Inf(1), ""),
		kr(10, -5, ""),
	}
	for _, c := range cases {
		if got := KeyResultPercent(c); got != 0 {
			t.Errorf("KeyResultPercent(%v/%v) = %d, want 0", c.CurrentValue, c.TargetValue, got)
		}
	}
}

func TestKeyResultPercent_AtTarget(t *testing.T) {
	for _, target := range []float64{1, 3, 7, 50, 0.3, 12345.678} {
		if got := KeyResultPercent(kr(target, target, "")); got != 100 {
			t.Errorf("KeyResultPercent(%v/%v) = %d, want 100", target, target, got)
		}
	}
}

func TestKeyResultPercent_RoundsHalfUp(t *testing.T) {
	// 1/8 = 12.5% -> 13
	if got := KeyResultPercent(kr(1, 8, "")); got != 13 {
		t.Errorf("KeyResultPercent(1/8) = %d, want 13", got)
	}
	// 1/3 = 33.33% -> 33
	if got := KeyResultPercent(kr(1, 3, "")); got != 33 {
		t.Errorf("KeyResultPercent(1/3) = %d, want 33", got)
	}
}

func TestKeyResultPercent_OverAchievedNotClamped(t *testing.T) {
	if got := KeyResultPercent(kr(150, 100, "")); got != 150 {
		t.Errorf("KeyResultPercent(150/100) = %d, want 150", got)
	}
}

// --- ObjectivePercent ---

func TestObjectivePercent_Empty(t *testing.T) {
	if got := ObjectivePercent(nil); got != 0 {
		t.Errorf("ObjectivePercent(nil) = %d, want 0", got)
	}
}

func TestObjectivePercent_Average(t *testing.T) {
	// 100, 50, 25 -> 58.33 -> 58
	krs := []domain.KeyResult{kr(10, 10, ""), kr(5, 10, ""), kr(1, 4, "")}
	if got := ObjectivePercent(krs); got != 58 {
		t.Errorf("ObjectivePercent = %d, want 58", got)
	}
}

func TestObjectivePercent_HalfRoundsUp(t *testing.T) {
	// 100 and 25 -> 62.5 -> 63
	krs := []domain.KeyResult{kr(4, 4, ""), kr(1, 4, "")}
	if got := ObjectivePercent(krs); got != 63 {
		t.Errorf("ObjectivePercent = %d, want 63", got)
	}
}

func TestObjectivePercent_ZeroTargetCountsAsZero(t *testing.T) {
	krs := []domain.KeyResult{kr(10, 10, ""), kr(10, 0, "")}
	if got := ObjectivePercent(krs); got != 50 {
		t.Errorf("ObjectivePercent = %d, want 50", got)
	}
}

// --- WorstStatus ---

func TestWorstStatus_Empty(t *testing.T) {
	if got := WorstStatus(nil); got != domain.StatusOnTrack {
		t.Errorf("WorstStatus(nil) = %q, want on_track", got)
	}
	if got := WorstStatus([]domain.KeyResult{}); got != domain.StatusOnTrack {
		t.Errorf("WorstStatus([]) = %q, want on_track", got)
	}
}

func TestWorstStatus_UnrecognizedDefaults(t *testing.T) {
	krs := []domain.KeyResult{kr(0, 1, "bogus"), kr(0, 1, "")}
	if got := WorstStatus(krs); got != domain.StatusOnTrack {
		t.Errorf("WorstStatus = %q, want on_track", got)
	}
}

func TestWorstStatus_OverdueBeatsAheadInAnyOrder(t *testing.T) {
	a := []domain.KeyResult{kr(0, 1, domain.StatusAhead), kr(0, 1, domain.StatusOverdue)}
	b := []domain.KeyResult{kr(0, 1, domain.StatusOverdue), kr(0, 1, domain.StatusAhead)}
	for _, krs := range [][]domain.KeyResult{a, b} {
		if got := WorstStatus(krs); got != domain.StatusOverdue {
			t.Errorf("WorstStatus = %q, want overdue", got)
		}
	}
}

func TestWorstStatus_Precedence(t *testing.T) {
	cases := []struct {
		in   []domain.Status
		want domain.Status
	}{
		{[]domain.Status{domain.StatusCompleted, domain.StatusAhead}, domain.StatusAhead},
		{[]domain.Status{domain.StatusCompleted, domain.StatusAhead, domain.StatusOnTrack}, domain.StatusOnTrack},
		{[]domain.Status{domain.StatusOnTrack, domain.StatusAtRisk, domain.StatusAhead}, domain.StatusAtRisk},
		{[]domain.Status{domain.StatusCompleted}, domain.StatusCompleted},
		{[]domain.Status{domain.StatusCompleted, "weird"}, domain.StatusCompleted},
	}
	for _, c := range cases {
		if got := WorstOf(c.in...); got != c.want {
			t.Errorf("WorstOf(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

// --- TeamAverageProgress / AtRiskCount ---

func TestTeamAverageProgress(t *testing.T) {
	if got := TeamAverageProgress(nil); got != 0 {
		t.Errorf("TeamAverageProgress(nil) = %d, want 0", got)
	}
	if got := TeamAverageProgress(objectives(10, 20, 35)); got != 22 {
		t.Errorf("TeamAverageProgress = %d, want 22", got)
	}
	if got := TeamAverageProgress(objectives(10, 15)); got != 13 {
		t.Errorf("TeamAverageProgress(12.5) = %d, want 13", got)
	}
}

func TestAtRiskCount_StrictlyBelow(t *testing.T) {
	objs := objectives(69, 70, 71, 0, 100)
	if got := AtRiskCount(objs, DefaultAtRiskThreshold); got != 2 {
		t.Errorf("AtRiskCount = %d, want 2", got)
	}
}

func TestAtRiskCount_IndependentOfStatus(t *testing.T) {
	// 65% progress but on_track: counted by threshold, not by status.
	objs := []domain.Objective{{Progress: 65, Status: domain.StatusOnTrack}}
	if got := AtRiskCount(objs, DefaultAtRiskThreshold); got != 1 {
		t.Errorf("AtRiskCount = %d, want 1", got)
	}
	if got := CountByStatus(objs, domain.StatusAtRisk); got != 0 {
		t.Errorf("CountByStatus(at_risk) = %d, want 0", got)
	}
}

func TestClampPercent(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 180: 100}
	for in, want := range cases {
		if got := ClampPercent(in); got != want {
			t.Errorf("ClampPercent(%d) = %d, want %d", in, got, want)
		}
	}
}

// --- HumanizeRecency ---

func TestHumanizeRecency_Nil(t *testing.T) {
	if got := HumanizeRecency(nil, time.Now()); got != nil {
		t.Errorf("HumanizeRecency(nil) = %q, want nil", *got)
	}
}

func TestHumanizeRecency_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Minute, "Just now"},
		{time.Hour, "1 hour ago"},
		{5*time.Hour + 30*time.Minute, "5 hours ago"},
		{23*time.Hour + 59*time.Minute, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{73 * time.Hour, "3 days ago"},
		{-2 * time.Hour, "Just now"},
	}
	for _, c := range cases {
		ts := now.Add(-c.ago)
		got := HumanizeRecency(&ts, now)
		if got == nil || *got != c.want {
			t.Errorf("HumanizeRecency(-%v) = %v, want %q", c.ago, got, c.want)
		}
	}
}
