package main

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func newLocationsCmd(opts *rootOptions) *cobra.Command {
	locationsCmd := &cobra.Command{Use: "locations", Short: "Location operations"}

	// list
	var limit, offset int
	var mine bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List locations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/locations"
			var query map[string]string
			if mine {
				path = "/api/locations/mine"
			} else {
				query = map[string]string{"limit": strconv.Itoa(limit), "offset": strconv.Itoa(offset)}
			}
			data, err := opts.client().do(cmd.Context(), http.MethodGet, path, query, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Page size")
	listCmd.Flags().IntVarP(&offset, "offset", "o", 0, "Page offset")
	listCmd.Flags().BoolVar(&mine, "mine", false, "Only locations uploaded by the caller")
	locationsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get LOCATION_ID",
		Short: "Get a location by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/locations/"+args[0], nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	locationsCmd.AddCommand(getCmd)

	// random
	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Get a random location",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/locations/random", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	locationsCmd.AddCommand(randomCmd)

	// create
	var lat, lng float64
	var address, image string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Upload a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"latitude": lat, "longitude": lng, "address": address}
			if image != "" {
				payload["imageUrl"] = image
			}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/locations", nil, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	createCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	createCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	createCmd.Flags().StringVar(&address, "address", "", "Address (required)")
	createCmd.Flags().StringVar(&image, "image", "", "Image URL")
	_ = createCmd.MarkFlagRequired("lat")
	_ = createCmd.MarkFlagRequired("lng")
	_ = createCmd.MarkFlagRequired("address")
	locationsCmd.AddCommand(createCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete LOCATION_ID",
		Short: "Delete a location you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := opts.client().do(cmd.Context(), http.MethodDelete, "/api/locations/"+args[0], nil, nil)
			return err
		},
	}
	locationsCmd.AddCommand(deleteCmd)

	return locationsCmd
}
