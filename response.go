package hyni

import (
	"github.com/spetersoncode/hyni/jsonpath"
)

// Sentinel messages returned by ExtractError.
const (
	UnknownError      = "Unknown error"
	ErrorParseFailure = "Failed to parse error message"
)

// Usage holds token counts reported by a provider response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// DecodeResponse parses a response body into the tree form the Extract
// methods expect.
func DecodeResponse(body []byte) (any, error) {
	return decodeTree(body)
}

// ExtractText returns the text at response_format.success.text_path.
func (c *Context) ExtractText(response any) (string, error) {
	node, err := jsonpath.Resolve(response, c.textPath)
	if err != nil {
		return "", &ExtractionError{What: "text response", Path: c.textPath, Err: err}
	}
	return asText(node), nil
}

// ExtractFull returns the subtree at response_format.success.content_path.
// The path is read from the schema on every call.
func (c *Context) ExtractFull(response any) (any, error) {
	raw, ok := c.schema.raw("response_format", "success", "content_path")
	if !ok {
		return nil, &ExtractionError{What: "full response", Err: errNoContentPath}
	}
	path := jsonpath.Parse(raw)
	node, err := jsonpath.Resolve(response, path)
	if err != nil {
		return nil, &ExtractionError{What: "full response", Path: path, Err: err}
	}
	return node, nil
}

// ExtractError returns the provider error message found at
// response_format.error.error_path. It never fails: UnknownError is returned
// when the schema declares no error path and ErrorParseFailure when the path
// does not resolve.
func (c *Context) ExtractError(response any) string {
	if len(c.errorPath) == 0 {
		return UnknownError
	}
	node, err := jsonpath.Resolve(response, c.errorPath)
	if err != nil {
		return ErrorParseFailure
	}
	return asText(node)
}

// ExtractModel returns the model reported at response_format.success.model_path,
// or "" when the schema declares no such path or it does not resolve.
func (c *Context) ExtractModel(response any) string {
	raw, ok := c.schema.raw("response_format", "success", "model_path")
	if !ok {
		return ""
	}
	node, err := jsonpath.Resolve(response, jsonpath.Parse(raw))
	if err != nil {
		return ""
	}
	s, _ := node.(string)
	return s
}

// ExtractUsage reads token counts from response_format.usage. ok is false
// when neither count could be found.
func (c *Context) ExtractUsage(response any) (usage Usage, ok bool) {
	in, inOK := c.usageCount(response, "input_tokens_path")
	out, outOK := c.usageCount(response, "output_tokens_path")
	return Usage{InputTokens: in, OutputTokens: out}, inOK || outOK
}

func (c *Context) usageCount(response any, key string) (int, bool) {
	raw, ok := c.schema.raw("response_format", "usage", key)
	if !ok {
		return 0, false
	}
	node, err := jsonpath.Resolve(response, jsonpath.Parse(raw))
	if err != nil {
		return 0, false
	}
	return asInt(node)
}
