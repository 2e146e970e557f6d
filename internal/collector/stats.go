package collector

import "sync/atomic"

// Stats accumulates run counters. All increments are atomic so backend
// adapters and the orchestrator can tally from any goroutine.
type Stats struct {
	orgsProcessed     atomic.Int64
	mentionsFound     atomic.Int64
	mentionsInserted  atomic.Int64
	duplicatesSkipped atomic.Int64
	errors            atomic.Int64
}

// Snapshot is a read-only copy of the counters taken at the end of a run.
type Snapshot struct {
	OrgsProcessed     int64 `json:"orgs_processed"`
	MentionsFound     int64 `json:"mentions_found"`
	MentionsInserted  int64 `json:"mentions_inserted"`
	DuplicatesSkipped int64 `json:"duplicates_skipped"`
	Errors            int64 `json:"errors"`
}

func (s *Stats) OrgProcessed()     { s.orgsProcessed.Add(1) }
func (s *Stats) MentionFound()     { s.mentionsFound.Add(1) }
func (s *Stats) MentionInserted()  { s.mentionsInserted.Add(1) }
func (s *Stats) DuplicateSkipped() { s.duplicatesSkipped.Add(1) }
func (s *Stats) Error()            { s.errors.Add(1) }

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		OrgsProcessed:     s.orgsProcessed.Load(),
		MentionsFound:     s.mentionsFound.Load(),
		MentionsInserted:  s.mentionsInserted.Load(),
		DuplicatesSkipped: s.duplicatesSkipped.Load(),
		Errors:            s.errors.Load(),
	}
}
