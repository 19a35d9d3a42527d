package entities

import (
	"sort"
	"strings"
)

// JobMode selects how a repository job resolves its clone URLs.
type JobMode string

const (
	// JobModeProvider enumerates owned repositories through a forge API.
	JobModeProvider JobMode = "provider"
	// JobModeURL backs up a single, directly configured clone URL.
	JobModeURL JobMode = "url"
)

// SnapshotRef points at one snapshot archive object and the moment it was
// taken.
type SnapshotRef struct {
	RootPrefix           string `json:"rootPrefix"`
	TimestampUnixSeconds int64  `json:"timestampUnixSeconds"`
}

// IsValid reports whether the reference points at a real archive.
func (it SnapshotRef) IsValid() bool {
	return it.RootPrefix != "" && it.TimestampUnixSeconds > 0
}

// RepositoryIndex is the per-repository document listing every known snapshot,
// newest first.
type RepositoryIndex struct {
	Mode               JobMode       `json:"mode"`
	RepositoryIdentity string        `json:"repositoryIdentity"`
	Snapshots          []SnapshotRef `json:"snapshots"`
}

// RepositoryRegistry is the single bucket-wide document enumerating every
// per-repository index key, so that no hot path ever lists the bucket.
type RepositoryRegistry struct {
	IndexKeys []string `json:"indexKeys"`
}

// Contains reports whether the registry already tracks the given index key.
func (it *RepositoryRegistry) Contains(indexKey string) bool {
	normalized := strings.Trim(indexKey, "/")
	for _, key := range it.IndexKeys {
		if strings.Trim(key, "/") == normalized {
			return true
		}
	}
	return false
}

// Add records an index key. It reports whether the registry changed.
func (it *RepositoryRegistry) Add(indexKey string) bool {
	if it.Contains(indexKey) {
		return false
	}
	it.IndexKeys = append(it.IndexKeys, strings.Trim(indexKey, "/"))
	return true
}

// Remove drops an index key. It reports whether the registry changed.
func (it *RepositoryRegistry) Remove(indexKey string) bool {
	normalized := strings.Trim(indexKey, "/")
	for i, key := range it.IndexKeys {
		if strings.Trim(key, "/") == normalized {
			it.IndexKeys = append(it.IndexKeys[:i], it.IndexKeys[i+1:]...)
			return true
		}
	}
	return false
}

// Normalize sorts the index keys, drops duplicates and blanks, and strips
// surrounding slashes. The registry is always persisted in this form.
func (it *RepositoryRegistry) Normalize() {
	seen := make(map[string]struct{}, len(it.IndexKeys))
	normalized := make([]string, 0, len(it.IndexKeys))
	for _, key := range it.IndexKeys {
		trimmed := strings.Trim(strings.TrimSpace(key), "/")
		if trimmed == "" {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	sort.Strings(normalized)
	it.IndexKeys = normalized
}

// NormalizeSnapshots drops invalid references, keeps only the newest entry per
// root prefix, and orders the result newest first. Timestamp ties are broken
// by prefix so the result is deterministic.
func NormalizeSnapshots(snapshots []SnapshotRef) []SnapshotRef {
	newestByPrefix := make(map[string]SnapshotRef, len(snapshots))
	for _, snapshot := range snapshots {
		if !snapshot.IsValid() {
			continue
		}
		current, exists := newestByPrefix[snapshot.RootPrefix]
		if !exists || snapshot.TimestampUnixSeconds > current.TimestampUnixSeconds {
			newestByPrefix[snapshot.RootPrefix] = snapshot
		}
	}

	normalized := make([]SnapshotRef, 0, len(newestByPrefix))
	for _, snapshot := range newestByPrefix {
		normalized = append(normalized, snapshot)
	}
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].TimestampUnixSeconds != normalized[j].TimestampUnixSeconds {
			return normalized[i].TimestampUnixSeconds > normalized[j].TimestampUnixSeconds
		}
		return normalized[i].RootPrefix < normalized[j].RootPrefix
	})
	return normalized
}

// SnapshotsEqual reports position-wise equality of two snapshot lists. It is
// the comparison behind "rewrite the index only when it changed".
func SnapshotsEqual(left, right []SnapshotRef) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
