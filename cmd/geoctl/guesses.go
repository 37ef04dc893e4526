package main

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func newGuessCmd(opts *rootOptions) *cobra.Command {
	guessCmd := &cobra.Command{Use: "guess", Short: "Guess operations"}

	// submit
	var lat, lng float64
	var address string
	submitCmd := &cobra.Command{
		Use:   "submit LOCATION_ID",
		Short: "Guess where a location is; costs points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"latitude": lat, "longitude": lng}
			if address != "" {
				payload["address"] = address
			}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/locations/"+args[0]+"/guesses", nil, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	submitCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	submitCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	submitCmd.Flags().StringVar(&address, "address", "", "Free-form address of the guess")
	_ = submitCmd.MarkFlagRequired("lat")
	_ = submitCmd.MarkFlagRequired("lng")
	guessCmd.AddCommand(submitCmd)

	// top
	var limit int
	topCmd := &cobra.Command{
		Use:   "top LOCATION_ID",
		Short: "Show the leaderboard for a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query map[string]string
			if limit > 0 {
				query = map[string]string{"limit": strconv.Itoa(limit)}
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/locations/"+args[0]+"/guesses", query, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	topCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum entries (server default when 0)")
	guessCmd.AddCommand(topCmd)

	// history
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the caller's guesses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/users/me/guesses", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	guessCmd.AddCommand(historyCmd)

	return guessCmd
}

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the most recent user actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var query map[string]string
			if limit > 0 {
				query = map[string]string{"limit": strconv.Itoa(limit)}
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/logs", query, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum entries (server default when 0)")
	return cmd
}
