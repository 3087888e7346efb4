package hyni

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// minimalSchema has only the required sections: no roles, no system message
// support, no image type and no error path.
const minimalSchema = `{
  "provider": {"name": "test-provider"},
  "api": {"endpoint": "https://test.api.com"},
  "request_template": {"model": "test-model"},
  "message_format": {
    "structure": {"role": "user", "content": []},
    "content_types": {"text": {"type": "text", "text": ""}}
  },
  "response_format": {
    "success": {"text_path": ["content", 0, "text"]}
  },
  "features": {"streaming": false}
}`

func newClaude(t *testing.T, opts ...ConfigOption) *Context {
	t.Helper()
	ctx, err := NewFromFile("schemas/claude.json", NewConfig(opts...))
	require.NoError(t, err)
	return ctx
}

func newProvider(t *testing.T, name string, opts ...ConfigOption) *Context {
	t.Helper()
	ctx, err := NewFromFile("schemas/"+name+".json", NewConfig(opts...))
	require.NoError(t, err)
	return ctx
}

func newMinimal(t *testing.T, opts ...ConfigOption) *Context {
	t.Helper()
	ctx, err := NewFromJSON([]byte(minimalSchema), NewConfig(opts...))
	require.NoError(t, err)
	return ctx
}

func decode(t *testing.T, body string) any {
	t.Helper()
	v, err := DecodeResponse([]byte(body))
	require.NoError(t, err)
	return v
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
