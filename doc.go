// Package hyni builds LLM provider requests from declarative JSON schemas.
//
// A schema describes everything provider-specific: the endpoint, headers and
// authentication placeholder, the request template, the message and content
// shapes, parameter constraints, and where the reply text, error message and
// token usage live in a response. A [Context] holds one conversation and
// turns it into the provider's native request body, so adding a provider
// means writing a schema rather than code.
//
// # Core Types
//
//   - [Schema]: A parsed and structurally validated provider schema
//   - [Context]: Conversation state (model, system message, messages,
//     parameters, API key) bound to one schema
//   - [Config]: Validation switch and request defaults for a context
//
// Bundled schemas for claude, openai, mistral and deepseek are embedded in
// [BundledSchemas] and found by [LoadSchema] when no file of that name
// exists.
//
// # Basic Usage
//
// Build a request for a provider:
//
//	ctx, err := hyni.NewFromFile("schemas/claude.json", hyni.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ctx.SetAPIKey(os.Getenv("ANTHROPIC_API_KEY")); err != nil {
//	    log.Fatal(err)
//	}
//	ctx.SetSystemMessage("Answer in one sentence.")
//	ctx.AddUserMessage("What is the capital of France?")
//
//	body := ctx.BuildRequest(false)
//	headers := ctx.Headers()
//
// Send body as JSON to ctx.Endpoint() with headers, then read the reply:
//
//	resp, err := hyni.DecodeResponse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := ctx.ExtractText(resp)
//
// # Parameters
//
// Parameters accept any JSON-encodable value and are checked against the
// schema's type, range, enum and length constraints when validation is on:
//
//	ctx.SetParameter("temperature", 0.3)
//	ctx.SetParameters(map[string]any{"max_tokens": 512, "top_p": 0.9})
//
//	temp, err := hyni.ParameterAs[float64](ctx, "temperature")
//
// Explicit parameters win over template values; [WithDefaultMaxTokens] and
// [WithDefaultTemperature] fill fields the request would otherwise lack.
//
// # Multimodal Messages
//
// Attach an image as base64, a data URI or a file path:
//
//	ctx.AddUserMessageWithMedia("What's in this image?", "image/png", "photo.png")
//
// # Errors
//
// Schema problems are [*SchemaError], rejected input is [*ValidationError]
// and responses that do not match the schema are [*ExtractionError]. All
// three implement [CategorizedError] alongside the transport errors built
// with [NewTransientError] and friends.
//
// # Higher-Level Packages
//
//   - [github.com/spetersoncode/hyni/registry]: Provider name to schema path mapping
//   - [github.com/spetersoncode/hyni/factory]: Context creation, usage counters and task-scoped contexts
//   - [github.com/spetersoncode/hyni/chat]: HTTP client with retries and bounded concurrency
//   - [github.com/spetersoncode/hyni/config]: YAML and environment configuration
package hyni
