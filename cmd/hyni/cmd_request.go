package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/chat"
)

func newRequestCmd(a *app) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "request <provider> <message>",
		Short: "Print the HTTP request a message would produce, without sending it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, message := args[0], args[1]
			req, err := flags.request(message)
			if err != nil {
				return err
			}

			client := a.client()
			ctx, key, err := a.previewContext(client, provider)
			if err != nil {
				return err
			}
			if err := req.Apply(ctx); err != nil {
				return err
			}
			for _, problem := range ctx.ValidationErrors() {
				a.logger.Warn("request is not valid", "provider", provider, "problem", problem)
			}

			headers := ctx.Headers()
			if key == "" {
				headers = placeholderHeaders(ctx)
			}
			return writeRequest(cmd.OutOrStdout(), client.Endpoint(provider, ctx), headers, key, ctx.BuildRequest(flags.stream))
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) client() *chat.Client {
	opts := append(a.cfg.ClientOptions(), chat.WithLogger(a.logger))
	return chat.New(a.factory, opts...)
}

// previewContext builds a context with the provider's key when one is
// configured. Without a key the headers keep the schema placeholder.
func (a *app) previewContext(client *chat.Client, provider string) (*hyni.Context, string, error) {
	key, err := client.APIKey(provider)
	var missing *chat.MissingAPIKeyError
	if errors.As(err, &missing) {
		a.logger.Warn("no API key configured; headers show the schema placeholder", "provider", provider)
		ctx, err := a.factory.CreateContext(provider)
		return ctx, "", err
	}
	ctx, err := client.Context(provider)
	if err != nil {
		return nil, "", err
	}
	return ctx, key, nil
}

// placeholderHeaders returns the context headers with the schema's required
// headers in their unsubstituted form. A context without a key has the
// placeholder replaced by "", which hides where the key goes.
func placeholderHeaders(ctx *hyni.Context) map[string]string {
	headers := ctx.Headers()
	required, _ := ctx.Schema().Get("headers", "required")
	obj, _ := required.(map[string]any)
	for name, v := range obj {
		if s, ok := v.(string); ok {
			headers[name] = s
		}
	}
	return headers
}

func writeRequest(w io.Writer, endpoint string, headers map[string]string, key string, body map[string]any) error {
	fmt.Fprintf(w, "POST %s\n", endpoint)
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		value := headers[name]
		if key != "" {
			value = strings.ReplaceAll(value, key, maskKey(key))
		}
		fmt.Fprintf(w, "%s: %s\n", name, value)
	}
	fmt.Fprintln(w)

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
