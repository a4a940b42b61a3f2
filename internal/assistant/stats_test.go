package assistant

import (
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(KindFarmingInfo, time.Duration(ms)*time.Millisecond, false)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStatsByKind(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(KindChat, 50*time.Millisecond, false)
	stats.Record(KindChat, 150*time.Millisecond, true)
	stats.Record(KindCommunityQA, 900*time.Millisecond, false)

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.Errors != 1 {
		t.Fatalf("expected count=3 errors=1, got count=%d errors=%d", snap.Count, snap.Errors)
	}
	chat, ok := snap.ByKind[KindChat]
	if !ok {
		t.Fatal("expected chat entry")
	}
	if chat.Count != 2 || chat.Errors != 1 || chat.AvgMs != 100 {
		t.Fatalf("unexpected chat stats: %+v", chat)
	}
	if qa := snap.ByKind[KindCommunityQA]; qa.Count != 1 || qa.MaxMs != 900 {
		t.Fatalf("unexpected qa stats: %+v", qa)
	}
	if _, ok := snap.ByKind[KindCropCalendar]; ok {
		t.Fatal("expected no entry for a kind without samples")
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewLLMStats(10 * time.Millisecond)
	now := time.Unix(1000, 0)
	stats.now = func() time.Time { return now }
	stats.Record(KindChat, 100*time.Millisecond, false)
	now = now.Add(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}
	if snap.ByKind != nil {
		t.Fatalf("expected no per-kind stats, got %v", snap.ByKind)
	}

	stats.Record(KindChat, 200*time.Millisecond, false)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(KindChat, -10*time.Millisecond, false)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
