package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Guest session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionStatusCmd())
	cmd.AddCommand(newSessionDestroyCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a guest session, or show the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionResult

			header, err := client.Do(cmd.Context(), http.MethodPost, "/session", nil, &result)
			if err != nil {
				return err
			}

			// A new session arrives as a cookie; keep it for later commands
			if token := cookieValue(header, cfg.SessionName); token != "" {
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
				client.SetToken(token)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionResult

			if err := client.Get(cmd.Context(), "/session", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Destroy the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Envelope

			if err := client.Delete(cmd.Context(), "/session", nil, &result); err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newNameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name",
		Short: "Display name commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name>",
		Short: "Set the display name used on the leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"userName": args[0]}
			var result Envelope

			if err := client.Post(cmd.Context(), "/name", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}
