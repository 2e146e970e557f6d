package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

func TestWriteMentionsCSV(t *testing.T) {
	outletID := int64(7)
	published := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 5, 18, 9, 30, 0, 0, time.UTC)
	mentions := []model.Mention{
		{
			ID:             "m-1",
			OrganizationID: "org-1",
			OutletID:       &outletID,
			ArticleURL:     "https://freep.com/story/1",
			Headline:       "Headline, with a comma",
			PublishedDate:  &published,
			Excerpt:        "Excerpt",
			MentionType:    "mention",
			CreatedAt:      created,
		},
		{
			ID:             "m-2",
			OrganizationID: "org-1",
			ArticleURL:     "https://bridgemi.com/story/2",
			Headline:       "No outlet, no date",
			Excerpt:        "Excerpt",
			MentionType:    "mention",
			CreatedAt:      created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeMentionsCSV(&buf, mentions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,organization_id,outlet_id,article_url,headline,published_date,excerpt,mention_type,created_at", lines[0])
	assert.Contains(t, lines[1], `"Headline, with a comma"`)
	assert.Contains(t, lines[1], "2024-05-17")
	assert.Contains(t, lines[2], "m-2,org-1,,https://bridgemi.com/story/2")
}

func TestWriteMentionsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMentionsCSV(&buf, nil))
	// Header only.
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
