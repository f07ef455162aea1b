package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"learno_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second"},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("a", 100))
	require.NoError(t, err)
	assert.Equal(t, "first", resp1.Text)
	assert.Equal(t, 10, resp1.Usage.InputTokens)
	assert.Equal(t, StopEnd, resp1.StopReason)

	resp2, err := mock.Generate(context.Background(), UserPrompt("b", 100))
	require.NoError(t, err)
	assert.Equal(t, "second", resp2.Text)
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "[]"})

	_, _ = mock.Generate(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
	assert.Equal(t, "hello", mock.Calls[0].Messages[0].Content)
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
}

func TestObservedProvider_PassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "[]"}, MockResponse{Err: errors.New("boom")})
	p := WithObservability(mock)
	ctx := WithPurpose(context.Background(), "quiz")

	resp, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Text)

	_, err = p.Generate(ctx, Request{})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "mock", p.ModelID())
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "roadmap", PurposeFrom(WithPurpose(ctx, "roadmap")))
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiAliases))
	assert.Equal(t, "gemini-1.5-pro-002", resolveModel("gemini-1.5-pro-002", geminiAliases))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		wantErr bool
	}{
		{name: "mock needs no key", cfg: config.AIConfig{Provider: "mock"}},
		{name: "gemini without key", cfg: config.AIConfig{Provider: "gemini"}, wantErr: true},
		{name: "openai without key", cfg: config.AIConfig{Provider: "openai"}, wantErr: true},
		{name: "anthropic without key", cfg: config.AIConfig{Provider: "anthropic"}, wantErr: true},
		{name: "openai with key", cfg: config.AIConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}}},
		{name: "unknown provider", cfg: config.AIConfig{Provider: "unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.ModelID())
		})
	}
}

func TestFromStatus(t *testing.T) {
	cause := errors.New("boom")

	var limited *ErrRateLimit
	require.ErrorAs(t, fromStatus(http.StatusTooManyRequests, cause), &limited)
	assert.ErrorIs(t, limited, cause)

	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusUnauthorized} {
		var down *ErrProviderUnavailable
		assert.ErrorAs(t, fromStatus(status, cause), &down, "status %d", status)
	}
}

func TestFinish(t *testing.T) {
	resp, err := finish("[1]", StopEnd, "m", Usage{TotalTokens: 3})
	require.NoError(t, err)
	assert.Equal(t, "[1]", resp.Text)
	assert.Equal(t, "m", resp.Model)
	assert.Equal(t, 3, resp.Usage.TotalTokens)

	_, err = finish("[{", StopMaxTokens, "m", Usage{})
	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, "[{", truncated.Content)
}
