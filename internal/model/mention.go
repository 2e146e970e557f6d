package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxFieldLen bounds the stored length of headlines and excerpts.
const MaxFieldLen = 500

// MentionTypeMention is the only mention kind currently produced.
// The column is a tag so richer kinds (editorial, press release) can be
// added without a schema change.
const MentionTypeMention = "mention"

// Mention is a persisted, deduplicated, outlet-attributed article reference
// tied to one organization. Never mutated after construction.
type Mention struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	OutletID       *int64     `json:"outlet_id,omitempty"`
	ArticleURL     string     `json:"article_url"`
	Headline       string     `json:"headline"`
	PublishedDate  *time.Time `json:"published_date,omitempty"`
	Excerpt        string     `json:"excerpt"`
	MentionType    string     `json:"mention_type"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewMention builds a mention record for an organization from backend
// output. Headline and excerpt are NFC-normalized and truncated to
// MaxFieldLen. An empty excerpt falls back to the headline.
func NewMention(orgID string, outletID *int64, articleURL, headline string, published *time.Time, excerpt string) Mention {
	headline = Truncate(headline, MaxFieldLen)
	excerpt = Truncate(excerpt, MaxFieldLen)
	if excerpt == "" {
		excerpt = headline
	}
	return Mention{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		OutletID:       outletID,
		ArticleURL:     articleURL,
		Headline:       headline,
		PublishedDate:  published,
		Excerpt:        excerpt,
		MentionType:    MentionTypeMention,
		CreatedAt:      time.Now().UTC(),
	}
}

// Truncate normalizes s to NFC and cuts it to at most maxRunes runes.
// Rune-based so multi-byte headlines from international sources are never
// split mid-character.
func Truncate(s string, maxRunes int) string {
	s = norm.NFC.String(s)
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
