package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/hyni/chat"
)

// requestFlags are the message-shaping flags shared by request and chat.
type requestFlags struct {
	model  string
	system string
	params []string
	image  string
	stream bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.model, "model", "", "model name (default: schema default)")
	cmd.Flags().StringVar(&f.system, "system", "", "system message")
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "request parameter as key=value; values are parsed as JSON when possible")
	cmd.Flags().StringVar(&f.image, "image", "", "image attachment as mime:path, e.g. image/png:photo.png")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "request a streaming response")
}

// request converts the flags plus a user message into a chat request.
func (f *requestFlags) request(message string) (chat.Request, error) {
	params, err := parseParams(f.params)
	if err != nil {
		return chat.Request{}, err
	}
	msg := chat.Message{Role: "user", Content: message}
	if f.image != "" {
		mediaType, path, err := parseImage(f.image)
		if err != nil {
			return chat.Request{}, err
		}
		msg.MediaType, msg.MediaData = mediaType, path
	}
	return chat.Request{
		Model:         f.model,
		SystemMessage: f.system,
		Parameters:    params,
		Messages:      []chat.Message{msg},
		Stream:        f.stream,
	}, nil
}

// parseParams turns key=value pairs into parameters. A value that is valid
// JSON keeps its JSON type; anything else is a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil || dec.More() {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}

func parseImage(s string) (mediaType, path string, err error) {
	mediaType, path, ok := strings.Cut(s, ":")
	if !ok || !strings.Contains(mediaType, "/") || path == "" {
		return "", "", fmt.Errorf("invalid --image %q: want mime:path", s)
	}
	return mediaType, path, nil
}

// maskKey hides all but a short prefix of an API key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8)
}
