package hyni

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("from bundled schema", func(t *testing.T) {
		ctx := newClaude(t)
		assert.Equal(t, "claude", ctx.ProviderName())
		assert.Equal(t, "https://api.anthropic.com/v1/messages", ctx.Endpoint())
		assert.Equal(t, "claude-3-5-sonnet-20241022", ctx.Model())
	})

	t.Run("from json", func(t *testing.T) {
		ctx := newMinimal(t)
		assert.Equal(t, "test-provider", ctx.ProviderName())
		assert.Equal(t, "https://test.api.com", ctx.Endpoint())
		assert.Empty(t, ctx.Model())
	})

	t.Run("nil schema", func(t *testing.T) {
		_, err := New(nil, DefaultConfig())
		assert.True(t, IsSchemaError(err))
	})

	t.Run("request template must be an object", func(t *testing.T) {
		doc := `{
		  "provider": {"name": "p"}, "api": {"endpoint": "x"}, "request_template": [],
		  "message_format": {"structure": {}, "content_types": {}},
		  "response_format": {"success": {"text_path": []}}
		}`
		_, err := NewFromJSON([]byte(doc), DefaultConfig())
		var se *SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "request_template", se.Field)
	})
}

func TestSetModel(t *testing.T) {
	t.Run("available model", func(t *testing.T) {
		ctx := newClaude(t)
		require.NoError(t, ctx.SetModel("claude-3-haiku-20240307"))
		assert.Equal(t, "claude-3-haiku-20240307", ctx.Model())
	})

	t.Run("unknown model is rejected", func(t *testing.T) {
		ctx := newClaude(t)
		err := ctx.SetModel("invalid-model-name")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not supported by this provider")

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Allowed, any("claude-3-haiku-20240307"))
		assert.Equal(t, "claude-3-5-sonnet-20241022", ctx.Model())
	})

	t.Run("unknown model accepted without validation", func(t *testing.T) {
		ctx := newClaude(t, WithValidation(false))
		require.NoError(t, ctx.SetModel("anything"))
		assert.Equal(t, "anything", ctx.Model())
	})

	t.Run("no available list accepts any model", func(t *testing.T) {
		ctx := newMinimal(t)
		require.NoError(t, ctx.SetModel("custom"))
		assert.Equal(t, "custom", ctx.Model())
	})
}

func TestSupportedModels(t *testing.T) {
	models := newClaude(t).SupportedModels()
	assert.Contains(t, models, "claude-3-5-sonnet-20241022")
	assert.Contains(t, models, "claude-3-haiku-20240307")

	assert.Equal(t, []string{}, newMinimal(t).SupportedModels())
}

func TestSetSystemMessage(t *testing.T) {
	t.Run("supported", func(t *testing.T) {
		ctx := newClaude(t)
		require.NoError(t, ctx.SetSystemMessage("You are a helpful assistant."))
		sys, ok := ctx.SystemMessage()
		assert.True(t, ok)
		assert.Equal(t, "You are a helpful assistant.", sys)
		assert.Empty(t, ctx.Messages())
	})

	t.Run("unsupported with validation", func(t *testing.T) {
		ctx := newMinimal(t)
		err := ctx.SetSystemMessage("hi")
		assert.True(t, IsValidationError(err))
		_, ok := ctx.SystemMessage()
		assert.False(t, ok)
	})

	t.Run("unsupported without validation", func(t *testing.T) {
		ctx := newMinimal(t, WithValidation(false))
		require.NoError(t, ctx.SetSystemMessage("hi"))
		_, ok := ctx.SystemMessage()
		assert.True(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		ctx := newClaude(t)
		require.NoError(t, ctx.SetSystemMessage("x"))
		ctx.ClearSystemMessage()
		_, ok := ctx.SystemMessage()
		assert.False(t, ok)
	})
}

func TestHeaders(t *testing.T) {
	t.Run("api key replaces placeholder", func(t *testing.T) {
		ctx := newClaude(t)
		assert.False(t, ctx.HasAPIKey())
		require.NoError(t, ctx.SetAPIKey("test-key"))
		assert.True(t, ctx.HasAPIKey())

		headers := ctx.Headers()
		assert.Equal(t, "test-key", headers["x-api-key"])
		assert.Equal(t, "2023-06-01", headers["anthropic-version"])
		assert.Equal(t, "application/json", headers["content-type"])
	})

	t.Run("placeholder inside value", func(t *testing.T) {
		ctx := newProvider(t, "openai")
		require.NoError(t, ctx.SetAPIKey("sk-test"))
		assert.Equal(t, "Bearer sk-test", ctx.Headers()["Authorization"])
	})

	t.Run("empty optional headers are omitted", func(t *testing.T) {
		_, ok := newClaude(t).Headers()["anthropic-beta"]
		assert.False(t, ok)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		ctx := newClaude(t)
		err := ctx.SetAPIKey("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key cannot be empty")
		assert.False(t, ctx.HasAPIKey())
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		ctx := newClaude(t)
		h := ctx.Headers()
		h["x-api-key"] = "mutated"
		assert.NotEqual(t, "mutated", ctx.Headers()["x-api-key"])
	})
}

func TestFeatureFlags(t *testing.T) {
	claude := newClaude(t)
	assert.True(t, claude.SupportsMultimodal())
	assert.True(t, claude.SupportsStreaming())
	assert.True(t, claude.SupportsSystemMessages())
	assert.Equal(t, []string{"assistant", "user"}, claude.ValidRoles())

	deepseek := newProvider(t, "deepseek")
	assert.False(t, deepseek.SupportsMultimodal())

	minimal := newMinimal(t)
	assert.False(t, minimal.SupportsMultimodal())
	assert.False(t, minimal.SupportsStreaming())
	assert.False(t, minimal.SupportsSystemMessages())
	assert.Empty(t, minimal.ValidRoles())
}

func TestValidationErrors(t *testing.T) {
	t.Run("empty conversation", func(t *testing.T) {
		ctx := newClaude(t)
		assert.False(t, ctx.IsValidRequest())
		assert.Equal(t, []string{"At least one message is required"}, ctx.ValidationErrors())

		require.NoError(t, ctx.AddUserMessage("Hello"))
		assert.True(t, ctx.IsValidRequest())
		assert.Empty(t, ctx.ValidationErrors())
	})

	t.Run("last message role", func(t *testing.T) {
		ctx := newClaude(t)
		require.NoError(t, ctx.AddUserMessage("Hello"))
		require.NoError(t, ctx.AddAssistantMessage("Hi"))
		assert.Equal(t, []string{"Last message must be from: user"}, ctx.ValidationErrors())
	})

	t.Run("missing model", func(t *testing.T) {
		ctx := newMinimal(t)
		errs := ctx.ValidationErrors()
		assert.Contains(t, errs, "Model name is required")
		assert.Contains(t, errs, "At least one message is required")
	})

	t.Run("computed with validation disabled", func(t *testing.T) {
		ctx := newClaude(t, WithValidation(false))
		assert.False(t, ctx.IsValidRequest())
	})
}

func TestReset(t *testing.T) {
	ctx := newClaude(t)
	require.NoError(t, ctx.SetAPIKey("test-key"))
	require.NoError(t, ctx.SetModel("claude-3-haiku-20240307"))
	require.NoError(t, ctx.SetSystemMessage("Test system"))
	require.NoError(t, ctx.SetParameter("temperature", 0.8))
	require.NoError(t, ctx.AddUserMessage("Hello"))
	require.NoError(t, ctx.AddAssistantMessage("Hi"))

	ctx.Reset()

	assert.Empty(t, ctx.Messages())
	assert.False(t, ctx.HasParameter("temperature"))
	_, hasSystem := ctx.SystemMessage()
	assert.False(t, hasSystem)
	assert.Equal(t, "claude-3-5-sonnet-20241022", ctx.Model())
	assert.False(t, ctx.IsValidRequest())

	assert.True(t, ctx.HasAPIKey())
	assert.Equal(t, "test-key", ctx.Headers()["x-api-key"])
}
