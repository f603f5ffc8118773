package main

import (
	"fmt"

	"printshop/internal/auth"
	"printshop/internal/model"
	"printshop/internal/session"

	"github.com/spf13/cobra"
)

func newRegisterCmd(e *env) *cobra.Command {
	var reg model.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Long: `Creates a user account. Registration does not log you in.

Example:
  printshop register --name Alice --email alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reg.Name == "" {
				if reg.Name, err = e.ask(cmd, "Name"); err != nil {
					return err
				}
			}
			if reg.Email == "" {
				if reg.Email, err = e.ask(cmd, "Email"); err != nil {
					return err
				}
			}
			if reg.Password == "" {
				if reg.Password, err = e.askSecret(cmd, "Password"); err != nil {
					return err
				}
			}

			if _, err := auth.New(e.client, e.sess).Register(cmd.Context(), reg); err != nil {
				return failure(err, "Error occurred")
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render("Registration successful! Please login."))
			fmt.Fprintln(cmd.OutOrStdout(), "Next: printshop login --email "+reg.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	return loginCmd(e, session.RoleUser, "login", "Log in as a user")
}

func loginCmd(e *env, role session.Role, use, short string) *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if creds.Email == "" {
				if creds.Email, err = e.ask(cmd, "Email"); err != nil {
					return err
				}
			}
			if creds.Password == "" {
				if creds.Password, err = e.askSecret(cmd, "Password"); err != nil {
					return err
				}
			}

			route, err := auth.New(e.client, e.sess).Login(cmd.Context(), role, creds)
			if err != nil {
				return failure(err, "Invalid credentials")
			}
			id := e.sess.Current()
			greeting := fmt.Sprintf("Hello, %s", id.Name)
			if role == session.RoleAdmin {
				greeting += " (Admin)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Success.Render(greeting))
			fmt.Fprintln(cmd.OutOrStdout(), e.styles.Muted.Render("Dashboard: "+string(route)))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := auth.New(e.client, e.sess).Logout(cmd.Context()); err != nil {
				return failure(err, "Could not clear session")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := e.sess.Current()
			if id.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name:    %s\n", id.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Role:    %s\n", id.Role)
			if id.UserID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "User ID: %s\n", id.UserID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server:  %s\n", e.client.BaseURL())
			return nil
		},
	}
}
