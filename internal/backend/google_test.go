package backend

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Planet-Detroit/ecocensus/pkg/google"
)

func TestGoogle_Search(t *testing.T) {
	client := new(mockGoogleClient)
	client.On("Search", mock.Anything, `"Soulardarity" Michigan`, 10).Return([]google.Result{
		{Link: "https://planetdetroit.org/story/1", Title: "Solar co-op", Snippet: "The Highland Park group..."},
		{Link: "", Title: "no link"},
	}, nil)

	b := NewGoogle(client, "Michigan")
	candidates, err := b.Search(context.Background(), "Soulardarity", 10)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://planetdetroit.org/story/1", candidates[0].URL)
	assert.Equal(t, "Solar co-op", candidates[0].Headline)
	assert.Equal(t, "The Highland Park group...", candidates[0].Excerpt)
	assert.Nil(t, candidates[0].PublishedDate, "custom search has no reliable dates")
	assert.Equal(t, int64(1), b.QueriesUsed())
}

func TestGoogle_SiteFilterDropsViolators(t *testing.T) {
	client := new(mockGoogleClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]google.Result{
		{Link: "https://www.freep.com/story/1", Title: "kept"},
		{Link: "https://nytimes.com/story/2", Title: "dropped"},
	}, nil)

	b := NewGoogle(client, "Michigan", WithSiteFilter("freep.com"))
	candidates, err := b.Search(context.Background(), "Ecology Center", 10)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://www.freep.com/story/1", candidates[0].URL)
}

func TestGoogle_QuotaFromAPI(t *testing.T) {
	client := new(mockGoogleClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, google.ErrQuotaExceeded)

	b := NewGoogle(client, "Michigan")
	_, err := b.Search(context.Background(), "Ecology Center", 10)

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrQuotaExhausted))
}

func TestGoogle_LocalBudgetStopsBeforeCalling(t *testing.T) {
	client := new(mockGoogleClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return([]google.Result{}, nil).Twice()

	b := NewGoogle(client, "Michigan", WithDailyQuota(2))

	_, err := b.Search(context.Background(), "Org A", 10)
	require.NoError(t, err)
	_, err = b.Search(context.Background(), "Org B", 10)
	require.NoError(t, err)

	_, err = b.Search(context.Background(), "Org C", 10)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrQuotaExhausted))
	client.AssertExpectations(t)
}

func TestGoogle_TransientErrorIsNotQuota(t *testing.T) {
	client := new(mockGoogleClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, eris.New("google: unexpected status 500"))

	b := NewGoogle(client, "Michigan")
	_, err := b.Search(context.Background(), "Ecology Center", 10)

	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrQuotaExhausted))
}

func TestGoogle_Name(t *testing.T) {
	assert.Equal(t, "google", NewGoogle(nil, "").Name())
}
