// Package dedup tracks which article URLs have already been persisted so a
// run never stores the same mention twice within a scope.
package dedup

import (
	"strings"
	"sync"
)

// Normalize canonicalizes an article URL for deduplication: trailing
// slashes are removed and a leading http:// scheme becomes https://.
// Idempotent, so two URLs that normalize identically are the same mention
// regardless of which form a backend returned.
func Normalize(rawURL string) string {
	u := rawURL
	if strings.HasPrefix(u, "http://") {
		u = "https://" + strings.TrimPrefix(u, "http://")
	}
	// Keep the scheme separator intact; only slashes after it are trailing.
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return "https://" + strings.TrimRight(rest, "/")
	}
	return strings.TrimRight(u, "/")
}

// Ledger is an append-only set of seen URLs. Every URL is tracked in both
// raw and normalized form; there is no removal. Safe for concurrent use.
type Ledger struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{urls: make(map[string]struct{})}
}

// NewLedgerFrom creates a ledger pre-seeded with the given URLs, recording
// each in raw and normalized form.
func NewLedgerFrom(urls []string) *Ledger {
	l := &Ledger{urls: make(map[string]struct{}, 2*len(urls))}
	for _, u := range urls {
		l.record(u)
	}
	return l
}

// Seen reports whether the URL, in raw or normalized form, is already in
// the ledger.
func (l *Ledger) Seen(rawURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen(rawURL)
}

// Record adds the raw and normalized forms of the URL to the ledger.
func (l *Ledger) Record(rawURL string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(rawURL)
}

// Add records the URL and reports whether it was newly added. The check
// and the record are a single atomic operation, preserving the
// at-most-one-insert invariant under concurrent callers.
func (l *Ledger) Add(rawURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen(rawURL) {
		return false
	}
	l.record(rawURL)
	return true
}

// Len returns the number of tracked URL forms.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.urls)
}

func (l *Ledger) seen(rawURL string) bool {
	if _, ok := l.urls[rawURL]; ok {
		return true
	}
	_, ok := l.urls[Normalize(rawURL)]
	return ok
}

func (l *Ledger) record(rawURL string) {
	l.urls[rawURL] = struct{}{}
	l.urls[Normalize(rawURL)] = struct{}{}
}

// Scoped layers an organization-local ledger over the run-global one. The
// combined check is "seen in either"; records always land in both so later
// organizations in the same run also skip the URL.
type Scoped struct {
	Global *Ledger
	Local  *Ledger
}

// NewScoped creates a per-organization view over the global ledger.
func NewScoped(global *Ledger) Scoped {
	return Scoped{Global: global, Local: NewLedger()}
}

// Seen reports whether either scope has the URL.
func (s Scoped) Seen(rawURL string) bool {
	return s.Global.Seen(rawURL) || s.Local.Seen(rawURL)
}

// Add claims the URL in both scopes, reporting whether it was new. A URL
// already present in either scope is not claimed again.
func (s Scoped) Add(rawURL string) bool {
	if s.Local.Seen(rawURL) {
		return false
	}
	if !s.Global.Add(rawURL) {
		return false
	}
	s.Local.Record(rawURL)
	return true
}
