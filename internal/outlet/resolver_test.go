package outlet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Planet-Detroit/ecocensus/internal/model"
)

func testResolver() *Resolver {
	return NewResolver([]model.Outlet{
		{ID: 7, URL: "https://www.freep.com", Name: "Detroit Free Press"},
		{ID: 3, URL: "https://mlive.com", Name: "MLive"},
		{ID: 4, URL: "https://mlive.com/detroit", Name: "MLive - Detroit"},
		{ID: 9, URL: "https://bridgemi.com/", Name: "Bridge Michigan"},
	})
}

func TestResolve_MatchesDomain(t *testing.T) {
	r := testResolver()

	id := r.Resolve("https://www.freep.com/story/1")
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	r := testResolver()

	id := r.Resolve("HTTPS://WWW.FREEP.COM/Story/1")
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)
}

func TestResolve_LongestKeyWins(t *testing.T) {
	r := testResolver()

	// Both mlive.com and mlive.com/detroit match; the section outlet wins.
	id := r.Resolve("https://www.mlive.com/detroit/2024/05/story.html")
	require.NotNil(t, id)
	assert.Equal(t, int64(4), *id)

	// Outside the section, the parent outlet matches.
	id = r.Resolve("https://www.mlive.com/grand-rapids/story.html")
	require.NotNil(t, id)
	assert.Equal(t, int64(3), *id)
}

func TestResolve_NoMatch(t *testing.T) {
	r := testResolver()

	assert.Nil(t, r.Resolve("https://nytimes.com/2024/05/17/story.html"))
}

func TestResolve_TrailingSlashOutletURL(t *testing.T) {
	r := testResolver()

	id := r.Resolve("https://bridgemi.com/environment/story")
	require.NotNil(t, id)
	assert.Equal(t, int64(9), *id)
}

type mockCreator struct {
	mock.Mock
}

func (m *mockCreator) CreateOutlet(ctx context.Context, o model.Outlet) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func TestEnsure_CreatesMissingOutlet(t *testing.T) {
	r := testResolver()
	creator := new(mockCreator)

	o := model.Outlet{URL: "https://wdet.org", Name: "WDET"}
	creator.On("CreateOutlet", mock.Anything, o).Return(int64(12), nil).Once()

	id, err := r.Ensure(context.Background(), creator, o)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	// Second Ensure hits the in-memory mapping, not the store.
	id, err = r.Ensure(context.Background(), creator, o)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	creator.AssertExpectations(t)

	resolved := r.Resolve("https://wdet.org/posts/2024/story")
	require.NotNil(t, resolved)
	assert.Equal(t, int64(12), *resolved)
}

func TestEnsure_ExistingOutletSkipsStore(t *testing.T) {
	r := testResolver()
	creator := new(mockCreator)

	id, err := r.Ensure(context.Background(), creator, model.Outlet{URL: "https://freep.com", Name: "Detroit Free Press"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	creator.AssertNotCalled(t, "CreateOutlet")
}
