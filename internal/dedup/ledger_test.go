package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a":   "https://example.com/a",
		"https://example.com/a/":  "https://example.com/a",
		"http://example.com/a":    "https://example.com/a",
		"http://example.com/a//":  "https://example.com/a",
		"https://example.com":     "https://example.com",
		"http://":                 "https://",
		"https://":                "https://",
		"http:///":                "https://",
		"not-a-url":               "not-a-url",
		"not-a-url/":              "not-a-url",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	urls := []string{
		"http://example.com/a/",
		"https://example.com/a",
		"http://example.com//",
		"example.com/path/",
		"http://",
		"https://",
		"",
	}
	for _, u := range urls {
		once := Normalize(u)
		assert.Equal(t, once, Normalize(once), "input %q", u)
	}
}

func TestLedger_SeenAfterRecord(t *testing.T) {
	l := NewLedger()

	assert.False(t, l.Seen("https://example.com/a"))
	l.Record("https://example.com/a")
	assert.True(t, l.Seen("https://example.com/a"))
}

func TestLedger_NormalizedFormsMatch(t *testing.T) {
	l := NewLedgerFrom([]string{"https://example.com/a"})

	// Scheme and trailing-slash variants are the same mention.
	assert.True(t, l.Seen("http://example.com/a/"))
	assert.True(t, l.Seen("https://example.com/a/"))
	assert.True(t, l.Seen("http://example.com/a"))
	assert.False(t, l.Seen("https://example.com/b"))
}

func TestLedger_AddIsCheckAndRecord(t *testing.T) {
	l := NewLedger()

	assert.True(t, l.Add("https://example.com/a"))
	assert.False(t, l.Add("https://example.com/a"))
	assert.False(t, l.Add("http://example.com/a/"))
}

func TestLedger_AddConcurrent(t *testing.T) {
	l := NewLedger()

	const goroutines = 32
	var wg sync.WaitGroup
	added := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added <- l.Add("https://example.com/contested")
		}()
	}
	wg.Wait()
	close(added)

	wins := 0
	for ok := range added {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestLedger_Len(t *testing.T) {
	l := NewLedger()
	l.Record("https://example.com/a")

	// Raw form already normalized: one entry.
	assert.Equal(t, 1, l.Len())

	l.Record("http://example.com/b/")
	// Raw plus normalized forms.
	assert.Equal(t, 3, l.Len())
}

func TestScoped_SeenInEither(t *testing.T) {
	global := NewLedgerFrom([]string{"https://example.com/old"})
	s := NewScoped(global)

	assert.True(t, s.Seen("https://example.com/old"))

	s.Add("https://example.com/new")
	assert.True(t, s.Seen("https://example.com/new"))

	// Records propagate to the global scope for later organizations.
	assert.True(t, global.Seen("https://example.com/new"))
}

func TestScoped_AddClaimsBothScopes(t *testing.T) {
	global := NewLedgerFrom([]string{"https://example.com/old"})
	s := NewScoped(global)

	assert.False(t, s.Add("https://example.com/old"))
	assert.True(t, s.Add("https://example.com/new"))
	assert.False(t, s.Add("http://example.com/new/"))

	assert.True(t, global.Seen("https://example.com/new"))
	assert.True(t, s.Local.Seen("https://example.com/new"))
}

func TestLedgerFrom_ManyURLs(t *testing.T) {
	var urls []string
	for i := 0; i < 100; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/story/%d", i))
	}
	l := NewLedgerFrom(urls)

	for _, u := range urls {
		assert.True(t, l.Seen(u))
	}
	assert.False(t, l.Seen("https://example.com/story/100"))
}
