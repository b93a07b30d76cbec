package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hydroguard/hydroguard/pkg/types"
)

func asset(id string) types.AssetState {
	return types.AssetState{ID: id, TurbineType: types.TurbineFrancis}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPutAndGet(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(asset("u1"))

	e, ok := st.Get("u1")
	if !ok {
		t.Fatal("Get: expected entry, got none")
	}
	if e.State.ID != "u1" {
		t.Errorf("ID: got %q, want u1", e.State.ID)
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5 * time.Minute)
	if _, ok := st.Get("unknown"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestPut_Overwrites(t *testing.T) {
	st := New(5 * time.Minute)
	a := asset("u1")
	a.Risk.Status = types.StatusNominal
	b := asset("u1")
	b.Risk.Status = types.StatusCritical

	st.Put(a)
	st.Put(b)

	e, _ := st.Get("u1")
	if e.State.Risk.Status != types.StatusCritical {
		t.Errorf("Status: got %q, want CRITICAL", e.State.Risk.Status)
	}
}

func TestList_KeepsStaleAndSorts(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute)) // stale
	st.Put(asset("old"))

	st.now = fixedClock(base)
	st.Put(asset("u2"))
	st.Put(asset("u1"))

	entries := st.List()
	if len(entries) != 3 {
		t.Fatalf("List: got %d entries, want 3", len(entries))
	}
	want := []string{"old", "u1", "u2"}
	for i, e := range entries {
		if e.State.ID != want[i] {
			t.Errorf("List[%d]: got %q, want %q", i, e.State.ID, want[i])
		}
	}
	if st.Live(entries[0]) {
		t.Error("old entry should not be live")
	}
}

func TestLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)
	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(asset("old"))
	st.now = fixedClock(base)
	st.Put(asset("new"))

	old, _ := st.Get("old")
	if st.Live(old) {
		t.Error("Live(old): got true, want false")
	}
	fresh, _ := st.Get("new")
	if !st.Live(fresh) {
		t.Error("Live(new): got false, want true")
	}
}

func TestZeroTTL_NeverEvicts(t *testing.T) {
	base := time.Now()
	st := New(0)
	st.now = fixedClock(base.Add(-24 * time.Hour))
	st.Put(asset("u1"))
	st.now = fixedClock(base)

	if n := len(st.List()); n != 1 {
		t.Errorf("List: got %d, want 1", n)
	}
	if n := st.Evict(base); n != 0 {
		t.Errorf("Evict: got %d stale, want 0", n)
	}
}

func TestEvict_KeepsAssetState(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	worn := asset("old1")
	worn.Structural.WearIndex = decimal.RequireFromString("12.5")
	worn.Structural.FatigueCycles = 300

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(worn)
	st.Put(asset("old2"))
	st.PutTruth(types.TruthDelta{Asset: "old1", Component: "bearing"})

	st.now = fixedClock(base)
	st.Put(asset("live"))
	st.PutTruth(types.TruthDelta{Asset: "live", Component: "seal"})

	if stale := st.Evict(base); stale != 2 {
		t.Errorf("Evict: got %d stale, want 2", stale)
	}
	if st.Count() != 3 {
		t.Errorf("Count after evict: got %d, want 3", st.Count())
	}
	e, ok := st.Get("old1")
	if !ok {
		t.Fatal("old1 must survive eviction")
	}
	if !e.State.Structural.WearIndex.Equal(decimal.RequireFromString("12.5")) || e.State.Structural.FatigueCycles != 300 {
		t.Errorf("structural state lost: %+v", e.State.Structural)
	}
	if n := len(st.Truth("old1")); n != 0 {
		t.Errorf("truth for stale asset: got %d, want 0", n)
	}
	if n := len(st.Truth("live")); n != 1 {
		t.Errorf("truth for live asset: got %d, want 1", n)
	}
}

func TestAnomalies_NewestFirstAndBounded(t *testing.T) {
	st := New(time.Minute)
	st.limit = 3
	for i := 0; i < 5; i++ {
		stream := "u1"
		if i%2 == 1 {
			stream = "u2"
		}
		st.AddAnomaly(types.DetectedAnomaly{ID: fmt.Sprint(i), Stream: stream})
	}

	all := st.Anomalies("")
	if len(all) != 3 {
		t.Fatalf("Anomalies: got %d, want 3", len(all))
	}
	if all[0].ID != "4" || all[2].ID != "2" {
		t.Errorf("order: got %s..%s, want 4..2", all[0].ID, all[2].ID)
	}
	u1 := st.Anomalies("u1")
	if len(u1) != 2 || u1[0].ID != "4" {
		t.Errorf("Anomalies(u1) = %+v", u1)
	}
	if got := st.Anomalies("ghost"); got == nil || len(got) != 0 {
		t.Errorf("Anomalies(ghost) = %#v, want empty non-nil", got)
	}
}

func TestTruth_LatestPerComponent(t *testing.T) {
	st := New(time.Minute)
	st.PutTruth(types.TruthDelta{Asset: "u1", Component: "seal", Confidence: 40})
	st.PutTruth(types.TruthDelta{Asset: "u1", Component: "bearing", Confidence: 60})
	st.PutTruth(types.TruthDelta{Asset: "u1", Component: "seal", Confidence: 70})

	got := st.Truth("u1")
	if len(got) != 2 {
		t.Fatalf("Truth: got %d, want 2", len(got))
	}
	if got[0].Component != "bearing" || got[1].Confidence != 70 {
		t.Errorf("Truth = %+v", got)
	}

	st.ClearTruthComponent("u1", "seal")
	if got := st.Truth("u1"); len(got) != 1 || got[0].Component != "bearing" {
		t.Errorf("after ClearTruthComponent: %+v", got)
	}
	st.ClearTruthComponent("u9", "seal")

	st.ClearTruth("u1")
	if n := len(st.Truth("u1")); n != 0 {
		t.Errorf("after ClearTruth: got %d", n)
	}
}

func TestRemove(t *testing.T) {
	st := New(time.Minute)
	st.Put(types.AssetState{ID: "u1"})
	st.Put(types.AssetState{ID: "u2"})
	st.PutTruth(types.TruthDelta{Asset: "u1", Component: "seal"})
	st.AddLog("u1", types.LogEntry{Component: "seal", Text: "replaced"})

	st.Remove("u1")
	if _, ok := st.Get("u1"); ok {
		t.Error("u1 still stored")
	}
	if len(st.Truth("u1")) != 0 || len(st.Logs("u1")) != 0 {
		t.Error("u1 truth or logs kept")
	}
	if _, ok := st.Get("u2"); !ok {
		t.Error("u2 removed")
	}
}

func TestLogs_BoundedCopy(t *testing.T) {
	st := New(time.Minute)
	for i := 0; i < maxLogsPerAsset+5; i++ {
		st.AddLog("u1", types.LogEntry{Component: "bearing", Text: fmt.Sprintf("entry %d", i)})
	}
	st.AddLog("u2", types.LogEntry{Component: "seal", Text: "replaced"})

	logs := st.Logs("u1")
	if len(logs) != maxLogsPerAsset {
		t.Fatalf("Logs: got %d, want %d", len(logs), maxLogsPerAsset)
	}
	if logs[0].Text != "entry 5" {
		t.Errorf("oldest kept: got %q, want entry 5", logs[0].Text)
	}
	logs[0].Text = "mutated"
	if st.Logs("u1")[0].Text != "entry 5" {
		t.Error("Logs must return a copy")
	}
	if n := len(st.Logs("unknown")); n != 0 {
		t.Errorf("unknown asset: got %d entries, want 0", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	for _, ttl := range []time.Duration{0, time.Minute} {
		st := New(ttl)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			st.Run(ctx)
			close(done)
		}()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Run(ttl=%v) did not return after cancel", ttl)
		}
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			st.Put(asset("u1"))
		}()
		go func() {
			defer wg.Done()
			st.List()
		}()
		go func(n int) {
			defer wg.Done()
			st.AddAnomaly(types.DetectedAnomaly{ID: fmt.Sprint(n), Stream: "u1"})
		}(i)
	}
	wg.Wait()

	if st.Count() != 1 {
		t.Errorf("Count after concurrent puts: got %d, want 1", st.Count())
	}
	if n := len(st.Anomalies("u1")); n != 50 {
		t.Errorf("Anomalies: got %d, want 50", n)
	}
}
