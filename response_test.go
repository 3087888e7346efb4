package hyni

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/hyni/jsonpath"
)

const claudeResponse = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-sonnet-20241022",
  "content": [{"type": "text", "text": "Hello from Claude"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 12, "output_tokens": 5}
}`

const openAIResponse = `{
  "id": "chatcmpl-1",
  "model": "gpt-4o-2024-08-06",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi from GPT"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 9, "completion_tokens": 4, "total_tokens": 13}
}`

func TestExtractText(t *testing.T) {
	t.Run("claude", func(t *testing.T) {
		text, err := newClaude(t).ExtractText(decode(t, claudeResponse))
		require.NoError(t, err)
		assert.Equal(t, "Hello from Claude", text)
	})

	t.Run("openai", func(t *testing.T) {
		text, err := newProvider(t, "openai").ExtractText(decode(t, openAIResponse))
		require.NoError(t, err)
		assert.Equal(t, "Hi from GPT", text)
	})

	t.Run("numbers render as text", func(t *testing.T) {
		text, err := newClaude(t).ExtractText(decode(t, `{"content": [{"text": 42}]}`))
		require.NoError(t, err)
		assert.Equal(t, "42", text)
	})

	t.Run("unresolvable path", func(t *testing.T) {
		_, err := newClaude(t).ExtractText(decode(t, `{"content": []}`))
		require.Error(t, err)
		assert.True(t, IsExtractionError(err))
		assert.ErrorIs(t, err, jsonpath.ErrResolve)
		assert.Contains(t, err.Error(), "text response")
	})
}

func TestExtractFull(t *testing.T) {
	t.Run("content subtree", func(t *testing.T) {
		full, err := newClaude(t).ExtractFull(decode(t, claudeResponse))
		require.NoError(t, err)
		assert.JSONEq(t, `[{"type": "text", "text": "Hello from Claude"}]`, toJSON(t, full))
	})

	t.Run("schema without content path", func(t *testing.T) {
		_, err := newMinimal(t).ExtractFull(decode(t, claudeResponse))
		assert.True(t, IsExtractionError(err))
	})

	t.Run("unresolvable path", func(t *testing.T) {
		_, err := newClaude(t).ExtractFull(decode(t, `{"id": "x"}`))
		assert.ErrorIs(t, err, jsonpath.ErrResolve)
	})
}

func TestExtractError(t *testing.T) {
	t.Run("message at error path", func(t *testing.T) {
		resp := decode(t, `{"type": "error", "error": {"type": "invalid_request_error", "message": "max_tokens: required"}}`)
		assert.Equal(t, "max_tokens: required", newClaude(t).ExtractError(resp))
	})

	t.Run("no error path", func(t *testing.T) {
		assert.Equal(t, UnknownError, newMinimal(t).ExtractError(decode(t, `{"error": "x"}`)))
	})

	t.Run("path does not resolve", func(t *testing.T) {
		assert.Equal(t, ErrorParseFailure, newClaude(t).ExtractError(decode(t, `{"detail": "x"}`)))
	})
}

func TestExtractModelAndUsage(t *testing.T) {
	t.Run("claude", func(t *testing.T) {
		ctx := newClaude(t)
		resp := decode(t, claudeResponse)
		assert.Equal(t, "claude-3-5-sonnet-20241022", ctx.ExtractModel(resp))

		usage, ok := ctx.ExtractUsage(resp)
		require.True(t, ok)
		assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 5}, usage)
	})

	t.Run("openai", func(t *testing.T) {
		ctx := newProvider(t, "openai")
		resp := decode(t, openAIResponse)
		assert.Equal(t, "gpt-4o-2024-08-06", ctx.ExtractModel(resp))

		usage, ok := ctx.ExtractUsage(resp)
		require.True(t, ok)
		assert.Equal(t, Usage{InputTokens: 9, OutputTokens: 4}, usage)
	})

	t.Run("absent", func(t *testing.T) {
		ctx := newMinimal(t)
		resp := decode(t, claudeResponse)
		assert.Empty(t, ctx.ExtractModel(resp))
		_, ok := ctx.ExtractUsage(resp)
		assert.False(t, ok)
	})

	t.Run("partial usage", func(t *testing.T) {
		usage, ok := newClaude(t).ExtractUsage(decode(t, `{"usage": {"output_tokens": 3}}`))
		assert.True(t, ok)
		assert.Equal(t, Usage{OutputTokens: 3}, usage)
	})
}
