package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:8080"

type rootOptions struct {
	api   string
	token string
}

func (o *rootOptions) client() *apiClient { return newAPIClient(o.api, o.token) }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "geoctl",
		Short:         "CLI client for the geotagger REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.api, "api", "a", envOr("GEOTAGGER_API", defaultAPI), "Geotagger service base URL")
	rootCmd.PersistentFlags().StringVarP(&opts.token, "token", "t", os.Getenv("GEOTAGGER_TOKEN"), "Bearer token (defaults to $GEOTAGGER_TOKEN)")

	rootCmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newMeCmd(opts),
		newProfileCmd(opts),
		newPasswordCmd(opts),
		newLocationsCmd(opts),
		newGuessCmd(opts),
		newLogsCmd(opts),
	)
	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
