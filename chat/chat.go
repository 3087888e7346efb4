package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/internal/retry"
	"github.com/spetersoncode/hyni/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Message is one conversation turn. MediaType and MediaData attach an image
// to user messages; MediaData is base64, a data URI or a file path.
type Message struct {
	Role      string
	Content   string
	MediaType string
	MediaData string
}

// Request describes one chat call. Zero fields fall back to the provider
// settings and then to the schema defaults.
type Request struct {
	Model         string
	SystemMessage string
	Messages      []Message
	Parameters    map[string]any
	Stream        bool
}

// Response is the result of a successful chat call.
type Response struct {
	ID       string
	Provider string
	Model    string
	Text     string
	Usage    hyni.Usage
	HasUsage bool
	Duration time.Duration
	Raw      any // decoded response body
}

// ChatText sends a single user message.
func (c *Client) ChatText(ctx context.Context, provider, text string) (*Response, error) {
	return c.Chat(ctx, provider, Request{
		Messages: []Message{{Role: hyni.RoleUser, Content: text}},
	})
}

// Chat sends req to provider. An empty provider means the default provider.
// Transient failures are retried according to the client's retry
// configuration.
func (c *Client) Chat(ctx context.Context, provider string, req Request) (*Response, error) {
	if req.Stream {
		return nil, ErrStreamingUnsupported
	}
	provider, err := c.resolveProvider(provider)
	if err != nil {
		return nil, err
	}

	hctx, err := c.Context(provider)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(hctx); err != nil {
		return nil, err
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	endpoint := c.Endpoint(provider, hctx)
	body := hctx.BuildRequest(false)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("chat: encode request: %w", err)
	}

	c.logger.Debug("sending chat request", "provider", provider, "endpoint", endpoint, "model", hctx.Model())

	start := time.Now()
	raw, err := retry.DoObserved(ctx, c.retryConfig, c.observer(provider), func() (any, error) {
		return c.post(ctx, provider, endpoint, hctx, payload)
	})
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordChat(provider, hctx.Model(), err, elapsed)
		c.logger.Error("chat request failed", "provider", provider, "model", hctx.Model(), "error", err)
		return nil, err
	}

	text, err := hctx.ExtractText(raw)
	if err != nil {
		metrics.RecordChat(provider, hctx.Model(), err, elapsed)
		return nil, err
	}

	model := hctx.ExtractModel(raw)
	if model == "" {
		model = c.fallbackModel(provider, req, hctx)
	}
	metrics.RecordChat(provider, model, nil, elapsed)

	usage, hasUsage := hctx.ExtractUsage(raw)
	if hasUsage {
		metrics.RecordTokens(provider, model, usage.InputTokens, usage.OutputTokens)
	}

	return &Response{
		ID:       uuid.NewString(),
		Provider: provider,
		Model:    model,
		Text:     text,
		Usage:    usage,
		HasUsage: hasUsage,
		Duration: elapsed,
		Raw:      raw,
	}, nil
}

// ChatBatch sends reqs concurrently. The first failure cancels the rest and
// is returned; on success responses are in request order.
func (c *Client) ChatBatch(ctx context.Context, provider string, reqs []Request) ([]*Response, error) {
	out := make([]*Response, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := c.Chat(gctx, provider, req)
			if err != nil {
				return fmt.Errorf("chat: batch request %d: %w", i, err)
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply writes the model, system message, parameters and messages of req
// into ctx. Stream is not applied; it is a BuildRequest argument.
func (req Request) Apply(ctx *hyni.Context) error {
	if req.Model != "" {
		if err := ctx.SetModel(req.Model); err != nil {
			return err
		}
	}
	if req.SystemMessage != "" {
		if err := ctx.SetSystemMessage(req.SystemMessage); err != nil {
			return err
		}
	}
	if len(req.Parameters) > 0 {
		if err := ctx.SetParameters(req.Parameters); err != nil {
			return err
		}
	}
	for _, m := range req.Messages {
		var err error
		switch m.Role {
		case hyni.RoleUser:
			err = ctx.AddUserMessageWithMedia(m.Content, m.MediaType, m.MediaData)
		case hyni.RoleAssistant:
			err = ctx.AddAssistantMessage(m.Content)
		default:
			err = ctx.AddMessage(m.Role, m.Content, m.MediaType, m.MediaData)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) fallbackModel(provider string, req Request, ctx *hyni.Context) string {
	if req.Model != "" {
		return req.Model
	}
	if m := c.settings[provider].Model; m != "" {
		return m
	}
	if m := ctx.Model(); m != "" {
		return m
	}
	return "unknown"
}

func (c *Client) post(ctx context.Context, provider, endpoint string, hctx *hyni.Context, payload []byte) (any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, hyni.NewPermanentError("chat: build request", 0, err)
	}
	for k, v := range hctx.Headers() {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, hyni.NewTransientError("chat: read response", resp.StatusCode, err)
	}
	tree, decodeErr := hyni.DecodeResponse(data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := hyni.UnknownError
		if decodeErr == nil {
			msg = hctx.ExtractError(tree)
		}
		return nil, statusError(provider, resp, msg)
	}
	if decodeErr != nil {
		return nil, hyni.NewPermanentError("chat: decode response", resp.StatusCode, decodeErr)
	}
	return tree, nil
}

// statusError categorizes a non-2xx response: 429 and 5xx are transient,
// other 4xx are user input except 401/403, everything else is permanent.
func statusError(provider string, resp *http.Response, apiMsg string) error {
	code := resp.StatusCode
	msg := fmt.Sprintf("%s API error (status %d): %s", provider, code, apiMsg)
	switch {
	case code == http.StatusTooManyRequests || code >= 500:
		return hyni.NewTransientErrorWithRetry(msg, code, retryAfter(resp.Header.Get("Retry-After")), nil)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return hyni.NewPermanentError(msg, code, nil)
	case code >= 400:
		return hyni.NewUserInputError(msg, code, nil)
	default:
		return hyni.NewPermanentError(msg, code, nil)
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
