package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KingPinFPV/basarometer-sub000/internal/config"
	"github.com/KingPinFPV/basarometer-sub000/pkg/anthropic"
)

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

func textReply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}

func TestClassify(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 && req.Messages[0].Content == "בשר טחון טרי"
	})).Return(textReply(`{"category":"beef"}`), nil)

	c := NewWithClient(mc, "claude-haiku-4-5-20251001")
	category, err := c.Classify(context.Background(), "בשר טחון טרי")

	require.NoError(t, err)
	assert.Equal(t, "beef", category)
	mc.AssertExpectations(t)
}

func TestClassify_FencedReply(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textReply("```json\n{\"category\":\"chicken\"}\n```"), nil)

	c := NewWithClient(mc, "claude-haiku-4-5-20251001")
	category, err := c.Classify(context.Background(), "שניצלונים")

	require.NoError(t, err)
	assert.Equal(t, "chicken", category)
}

func TestClassify_NotMeat(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textReply(`{"category":""}`), nil)

	c := NewWithClient(mc, "claude-haiku-4-5-20251001")
	category, err := c.Classify(context.Background(), "חלב 3%")

	require.NoError(t, err)
	assert.Empty(t, category)
}

func TestClassify_UnknownCategoryRejected(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textReply(`{"category":"dairy"}`), nil)

	c := NewWithClient(mc, "claude-haiku-4-5-20251001")
	_, err := c.Classify(context.Background(), "גבינה צהובה")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestClassify_NoJSONInReply(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textReply("I think this is beef."), nil)

	c := NewWithClient(mc, "claude-haiku-4-5-20251001")
	_, err := c.Classify(context.Background(), "אנטריקוט")

	require.Error(t, err)
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	assert.Nil(t, New(config.ClassifyConfig{Enabled: false, APIKey: "k"}))
	assert.Nil(t, New(config.ClassifyConfig{Enabled: true, APIKey: ""}))
	assert.NotNil(t, New(config.ClassifyConfig{Enabled: true, APIKey: "k", Model: "claude-haiku-4-5-20251001"}))
}
