package schedule

import "jiceot/internal/core"

// Completed reports whether records contain an entry for typeID in exactly
// period p. The amount is irrelevant: a zero-amount record is an explicit
// "settled" marker and still counts.
func Completed(records []core.CompletionRecord, typeID int64, p core.Period) bool {
	for _, r := range records {
		if r.TypeID == typeID && r.Period == p {
			return true
		}
	}
	return false
}

// LatestCompletion returns the record with the most recent period for typeID.
func LatestCompletion(records []core.CompletionRecord, typeID int64) (core.CompletionRecord, bool) {
	var (
		latest core.CompletionRecord
		found  bool
	)
	for _, r := range records {
		if r.TypeID != typeID {
			continue
		}
		if !found || r.Period.After(latest.Period) || (r.Period == latest.Period && r.ID > latest.ID) {
			latest = r
			found = true
		}
	}
	return latest, found
}

// ByType groups records by their type id.
func ByType(records []core.CompletionRecord) map[int64][]core.CompletionRecord {
	out := make(map[int64][]core.CompletionRecord)
	for _, r := range records {
		out[r.TypeID] = append(out[r.TypeID], r)
	}
	return out
}
