package backend

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Planet-Detroit/ecocensus/pkg/gdelt"
)

func TestGDELT_Search(t *testing.T) {
	client := new(mockGDELTClient)
	client.On("ArticleList", mock.Anything, `"Ecology Center" Michigan`, 50).Return([]gdelt.Article{
		{URL: "https://freep.com/story/1", Title: "River cleanup", SeenDate: "20240517103000"},
		{URL: "", Title: "missing url"},
		{URL: "https://bridgemi.com/story/2", Title: "Grant awarded"},
	}, nil)

	b := NewGDELT(client, "Michigan")
	candidates, err := b.Search(context.Background(), "Ecology Center", 50)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://freep.com/story/1", candidates[0].URL)
	assert.Equal(t, "River cleanup", candidates[0].Headline)
	assert.Equal(t, "River cleanup", candidates[0].Excerpt, "excerpt falls back to headline")
	require.NotNil(t, candidates[0].PublishedDate)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), *candidates[0].PublishedDate)
	assert.Nil(t, candidates[1].PublishedDate)
	client.AssertExpectations(t)
}

func TestGDELT_SearchNoContext(t *testing.T) {
	client := new(mockGDELTClient)
	client.On("ArticleList", mock.Anything, `"Soulardarity"`, 10).Return([]gdelt.Article{}, nil)

	b := NewGDELT(client, "")
	candidates, err := b.Search(context.Background(), "Soulardarity", 10)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestGDELT_SearchError(t *testing.T) {
	client := new(mockGDELTClient)
	client.On("ArticleList", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, eris.New("gdelt: rate limited"))

	b := NewGDELT(client, "Michigan")
	_, err := b.Search(context.Background(), "Ecology Center", 50)

	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrQuotaExhausted), "gdelt has no quota stop")
}

func TestGDELT_Name(t *testing.T) {
	assert.Equal(t, "gdelt", NewGDELT(nil, "").Name())
}
