package audit

import (
	"encoding/json"
	"time"

	"github.com/glvault/glvault/pkg/storage"
	"github.com/glvault/glvault/pkg/types"
	"github.com/glvault/glvault/pkg/vaulterr"
	"github.com/google/uuid"
)

// MaxIndexEntries bounds the per-alias audit index. Entries
// beyond this count remain in the backing store under their
// audit:<alias>:<id> key but are unreachable via Query/Stats.
const MaxIndexEntries = 10_000

// DefaultQueryLimit is used when Query's QueryOptions.Limit is 0.
const DefaultQueryLimit = 100

// DefaultStatsWindow is used when Stats' since is zero.
const DefaultStatsWindow = 24 * time.Hour

// Log is the append-only audit log.
type Log struct {
	backend storage.Backend
}

// New builds a Log over backend.
func New(backend storage.Backend) *Log {
	return &Log{backend: backend}
}

// generateID returns a random opaque token suitable for an audit entry ID.
func generateID() string {
	return uuid.New().String()
}

func (l *Log) loadIndex(alias string) ([]types.AuditIndexEntry, error) {
	raw, err := l.backend.Get(storage.AuditIndexKey(alias))
	if err == storage.ErrNotFound {
		return []types.AuditIndexEntry{}, nil
	}
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to load audit index", err)
	}
	var idx []types.AuditIndexEntry
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "corrupt audit index", err)
	}
	return idx, nil
}

func (l *Log) saveIndex(alias string, idx []types.AuditIndexEntry) error {
	raw, err := json.Marshal(idx)
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to serialize audit index", err)
	}
	if err := l.backend.Set(storage.AuditIndexKey(alias), raw); err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to persist audit index", err)
	}
	return nil
}

// Append writes a full AuditEntry and updates the alias's bounded
// index. Append is best-effort from the relay handler's perspective:
// a failure here must never fail a response already begun; callers
// log the returned error out-of-band and continue.
func (l *Log) Append(entry *types.AuditEntry) error {
	entry.ID = generateID()
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to serialize audit entry", err)
	}
	if err := l.backend.Set(storage.AuditEntryKey(entry.Alias, entry.ID), raw); err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to persist audit entry", err)
	}

	idx, err := l.loadIndex(entry.Alias)
	if err != nil {
		return err
	}
	idx = append(idx, types.AuditIndexEntry{ID: entry.ID, Timestamp: entry.Timestamp})
	if len(idx) > MaxIndexEntries {
		idx = idx[len(idx)-MaxIndexEntries:]
	}
	return l.saveIndex(entry.Alias, idx)
}

// QueryOptions filters Query's result set.
type QueryOptions struct {
	Since int64 // unix-ms, inclusive; 0 means "no lower bound"
	Until int64 // unix-ms, inclusive; 0 means "now"
	Limit int   // 0 means DefaultQueryLimit
}

func (l *Log) entriesInWindow(alias string, since, until int64) ([]*types.AuditEntry, error) {
	idx, err := l.loadIndex(alias)
	if err != nil {
		return nil, err
	}

	var out []*types.AuditEntry
	for _, ie := range idx {
		if ie.Timestamp < since || ie.Timestamp > until {
			continue
		}
		raw, err := l.backend.Get(storage.AuditEntryKey(alias, ie.ID))
		if err == storage.ErrNotFound {
			// Indexed but evicted from the backing store by an
			// out-of-band GC pass; skip.
			continue
		}
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to load audit entry", err)
		}
		var entry types.AuditEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "corrupt audit entry", err)
		}
		out = append(out, &entry)
	}
	return out, nil
}

// Query returns alias's audit entries within [since, until], ordered
// most-recent-first, trimmed to limit.
func (l *Log) Query(alias string, opts QueryOptions) ([]*types.AuditEntry, error) {
	until := opts.Until
	if until == 0 {
		until = time.Now().UnixMilli()
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	entries, err := l.entriesInWindow(alias, opts.Since, until)
	if err != nil {
		return nil, err
	}

	// Index is insertion-ordered ascending; reverse for most-recent-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Stats computes aggregate statistics over alias's entries in
// [since, now]. since of 0 defaults to now - 24h.
func (l *Log) Stats(alias string, since int64) (*types.AuditStats, error) {
	now := time.Now().UnixMilli()
	if since == 0 {
		since = now - DefaultStatsWindow.Milliseconds()
	}

	entries, err := l.entriesInWindow(alias, since, now)
	if err != nil {
		return nil, err
	}

	stats := &types.AuditStats{}
	if len(entries) == 0 {
		return stats, nil
	}

	var totalLatency int64
	var lastAccessed int64
	for _, e := range entries {
		stats.TotalRequests++
		if e.Status >= 400 {
			stats.ErrorCount++
		}
		totalLatency += e.LatencyMS
		if e.Timestamp > lastAccessed {
			lastAccessed = e.Timestamp
		}
	}

	// Integer mean rounded to nearest.
	stats.AvgLatencyMS = (totalLatency + stats.TotalRequests/2) / stats.TotalRequests
	stats.LastAccessed = lastAccessed
	return stats, nil
}
