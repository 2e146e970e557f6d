package backend

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Planet-Detroit/ecocensus/pkg/anthropic"
	"github.com/Planet-Detroit/ecocensus/pkg/gdelt"
	"github.com/Planet-Detroit/ecocensus/pkg/google"
)

type mockGDELTClient struct {
	mock.Mock
}

func (m *mockGDELTClient) ArticleList(ctx context.Context, query string, maxRecords int) ([]gdelt.Article, error) {
	args := m.Called(ctx, query, maxRecords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gdelt.Article), args.Error(1)
}

type mockGoogleClient struct {
	mock.Mock
}

func (m *mockGoogleClient) Search(ctx context.Context, query string, num int) ([]google.Result, error) {
	args := m.Called(ctx, query, num)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]google.Result), args.Error(1)
}

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}
