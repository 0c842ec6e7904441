package audit

import (
	"testing"

	"github.com/glvault/glvault/pkg/storage"
	"github.com/glvault/glvault/pkg/types"
)

func TestAppendAndQuery(t *testing.T) {
	l := New(storage.NewMemoryBackend())

	for i, status := range []int{200, 200, 429} {
		err := l.Append(&types.AuditEntry{
			Alias:     "x",
			Caller:    "contract-1",
			Path:      "/data",
			Method:    "GET",
			Status:    status,
			LatencyMS: int64(10 + i),
			Timestamp: int64(1000 + i),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := l.Query("x", QueryOptions{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Query() returned %d entries, want 3", len(entries))
	}
	// Most-recent-first.
	if entries[0].Status != 429 || entries[2].Status != 200 {
		t.Fatalf("Query() ordering wrong: statuses = %d, %d, %d", entries[0].Status, entries[1].Status, entries[2].Status)
	}
}

func TestQueryWindowFiltering(t *testing.T) {
	l := New(storage.NewMemoryBackend())

	for _, ts := range []int64{100, 200, 300, 400} {
		if err := l.Append(&types.AuditEntry{Alias: "w", Status: 200, Timestamp: ts}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := l.Query("w", QueryOptions{Since: 150, Until: 350})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Query() with window = %d entries, want 2", len(entries))
	}
}

func TestQueryLimit(t *testing.T) {
	l := New(storage.NewMemoryBackend())
	for i := 0; i < 10; i++ {
		if err := l.Append(&types.AuditEntry{Alias: "lim", Status: 200, Timestamp: int64(i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := l.Query("lim", QueryOptions{Limit: 3})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Query() with Limit=3 returned %d entries", len(entries))
	}
}

func TestStatsComputesAverageAndErrorCount(t *testing.T) {
	l := New(storage.NewMemoryBackend())
	entries := []types.AuditEntry{
		{Alias: "s", Status: 200, LatencyMS: 100, Timestamp: 1000},
		{Alias: "s", Status: 200, LatencyMS: 200, Timestamp: 2000},
		{Alias: "s", Status: 500, LatencyMS: 300, Timestamp: 3000},
	}
	for _, e := range entries {
		e := e
		if err := l.Append(&e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	// An explicit since covers the fixed timestamps above; since=0 would
	// default to the last 24h and exclude them.
	stats, err := l.Stats("s", 1000)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalRequests != 3 {
		t.Fatalf("TotalRequests = %d, want 3", stats.TotalRequests)
	}
	if stats.ErrorCount != 1 {
		t.Fatalf("ErrorCount = %d, want 1", stats.ErrorCount)
	}
	if stats.AvgLatencyMS != 200 {
		t.Fatalf("AvgLatencyMS = %d, want 200", stats.AvgLatencyMS)
	}
	if stats.LastAccessed != 3000 {
		t.Fatalf("LastAccessed = %d, want 3000", stats.LastAccessed)
	}
}

func TestStatsEmptyYieldsZeros(t *testing.T) {
	l := New(storage.NewMemoryBackend())
	stats, err := l.Stats("never-seen", 0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalRequests != 0 || stats.ErrorCount != 0 || stats.AvgLatencyMS != 0 || stats.LastAccessed != 0 {
		t.Fatalf("Stats() on empty alias = %+v, want all zeros", stats)
	}
}

func TestIndexBoundedToMaxEntries(t *testing.T) {
	l := New(storage.NewMemoryBackend())
	for i := 0; i < MaxIndexEntries+5; i++ {
		if err := l.Append(&types.AuditEntry{Alias: "bounded", Status: 200, Timestamp: int64(i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	idx, err := l.loadIndex("bounded")
	if err != nil {
		t.Fatalf("loadIndex() error = %v", err)
	}
	if len(idx) != MaxIndexEntries {
		t.Fatalf("index length = %d, want %d", len(idx), MaxIndexEntries)
	}
	// The oldest 5 entries should have been trimmed off the front.
	if idx[0].Timestamp != 5 {
		t.Fatalf("oldest surviving entry timestamp = %d, want 5", idx[0].Timestamp)
	}
}
