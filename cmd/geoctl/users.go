package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var email, password, firstName, lastName, avatar string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"email":     email,
				"password":  password,
				"firstName": firstName,
				"lastName":  lastName,
			}
			if avatar != "" {
				payload["avatarUrl"] = avatar
			}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/register", nil, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name (required)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	for _, f := range []string{"email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for an access token",
		Long:  "Prints the access token so it can be exported as GEOTAGGER_TOKEN.",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"email": email, "password": password}
			data, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/auth/login", nil, payload)
			if err != nil {
				return err
			}
			var tok struct {
				AccessToken string `json:"accessToken"`
			}
			if err := json.Unmarshal(data, &tok); err != nil {
				return fmt.Errorf("decode login response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return err
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/users/me", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var email, firstName, lastName, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your name, email or avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{}
			for flag, f := range map[string]struct {
				field string
				value *string
			}{
				"email":      {"email", &email},
				"first-name": {"firstName", &firstName},
				"last-name":  {"lastName", &lastName},
				"avatar":     {"avatarUrl", &avatar},
			} {
				if cmd.Flags().Changed(flag) {
					payload[f.field] = *f.value
				}
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to update; set at least one of --email, --first-name, --last-name, --avatar")
			}
			data, err := opts.client().do(cmd.Context(), http.MethodPatch, "/api/users/me", nil, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "New email")
	cmd.Flags().StringVar(&firstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "New last name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "New avatar URL")
	return cmd
}

func newPasswordCmd(opts *rootOptions) *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"currentPassword": current, "newPassword": next}
			_, err := opts.client().do(cmd.Context(), http.MethodPatch, "/api/users/me/password", nil, payload)
			return err
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password (required)")
	cmd.Flags().StringVar(&next, "new", "", "New password (required)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
