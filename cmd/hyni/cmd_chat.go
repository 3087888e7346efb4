package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "chat <provider> <message>",
		Short: "Send a message and print the reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, message := args[0], args[1]
			req, err := flags.request(message)
			if err != nil {
				return err
			}

			resp, err := a.client().Chat(cmd.Context(), provider, req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			a.logger.Info("chat complete",
				"provider", resp.Provider,
				"model", resp.Model,
				"duration", resp.Duration,
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
