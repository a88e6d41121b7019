package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Race and leaderboard commands",
	}

	cmd.AddCommand(newRaceStartCmd())
	cmd.AddCommand(newRaceFinishCmd())
	cmd.AddCommand(newRaceCancelCmd())
	cmd.AddCommand(newRaceBoardCmd())

	return cmd
}

func newRaceStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a race on the server clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RaceStarted

			if err := client.Post(cmd.Context(), "/race", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRaceFinishCmd() *cobra.Command {
	var raceID, raceMap, color string
	var raceTime int64

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Submit the client-measured time for the running race",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"raceId":    raceID,
				"raceTime":  raceTime,
				"raceMap":   raceMap,
				"raceColor": color,
			}
			var result Envelope

			if err := client.Patch(cmd.Context(), "/race", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&raceID, "race-id", "", "Race ID returned by race start (required)")
	cmd.Flags().Int64Var(&raceTime, "time", 0, "Race time in milliseconds (required)")
	cmd.Flags().StringVar(&raceMap, "map", "", "Map the race was run on (required)")
	cmd.Flags().StringVar(&color, "color", "", "Hamster color (required)")

	return cmd
}

func newRaceCancelCmd() *cobra.Command {
	var raceID string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the running race without recording it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if raceID == "" {
				return fmt.Errorf("--race-id is required")
			}

			req := map[string]string{"raceId": raceID}
			var result Envelope

			if err := client.Delete(cmd.Context(), "/race", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&raceID, "race-id", "", "Race ID to cancel (required)")

	return cmd
}

func newRaceBoardCmd() *cobra.Command {
	var raceMap, sort, sortBy, offset, limit string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Query the leaderboard",
		Long: `Query the leaderboard. Parameters are passed through unchanged; the
server normalizes invalid values and echoes the parameters it used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("map", raceMap)
			for key, val := range map[string]string{
				"sort":   sort,
				"sortBy": sortBy,
				"offset": offset,
				"limit":  limit,
			} {
				if val != "" {
					query.Set(key, val)
				}
			}

			var result Leaderboard
			if err := client.Get(cmd.Context(), "/race?"+query.Encode(), &result); err != nil {
				return err
			}
			if result.Result != "ok" {
				return fmt.Errorf("leaderboard query failed: %s", result.Message)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&raceMap, "map", "", "Map to rank")
	cmd.Flags().StringVar(&sort, "sort", "", "ASC or DESC")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "id, color, map, time or created_at")
	cmd.Flags().StringVar(&offset, "offset", "", "Rows to skip")
	cmd.Flags().StringVar(&limit, "limit", "", "Rows to return")

	return cmd
}
