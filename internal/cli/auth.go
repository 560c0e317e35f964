package cli

import (
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newAuthCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  `Commands for signing in and out of the hub and inspecting the current session.`,
	}

	cmd.AddCommand(
		newLoginCommand(root),
		newLogoutCommand(),
		newSignUpCommand(root),
		newStatusCommand(),
	)
	return cmd
}

func newLoginCommand(root *rootOptions) *cobra.Command {
	var (
		email      string
		password   string
		totpSecret string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and obtain storage credentials",
		Long: `Signs in with email and password, completing a TOTP step-up when the
account requires one, then makes sure valid storage credentials are stored.

Without --email the credentials come from ATRIAX_EMAIL and ATRIAX_PASSWORD,
or an interactive prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())

			in := hub.InitializeInput{ForceSignIn: force}
			if email != "" {
				if password == "" {
					var err error
					if password, err = NewPrompter(root.nonInteractive).Password("Password"); err != nil {
						return err
					}
				}
				in.Credentials = &hub.Credentials{Email: email, Password: password, TOTPSecret: totpSecret}
			}

			ready, err := app.Hub.Initialize(cmd.Context(), in)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Signed in as %s (%s)\n", ready.User.Username(), ready.User.Email)
			pterm.Info.Printf("Storage access key: %s\n", ready.Credentials.AccessKeyID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&totpSecret, "totp-secret", "", "TOTP secret used to answer an MFA step-up")
	cmd.Flags().BoolVar(&force, "force", false, "sign in again even if a session exists")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	var revokeStorage bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())

			if err := app.Hub.SignOut(cmd.Context(), revokeStorage); err != nil {
				return err
			}
			pterm.Success.Println("Signed out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&revokeStorage, "revoke-storage", false, "also forget the stored storage credentials")
	return cmd
}

func newSignUpCommand(root *rootOptions) *cobra.Command {
	var in hub.SignUpInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())

			if in.Password == "" {
				var err error
				if in.Password, err = NewPrompter(root.nonInteractive).Password("Password"); err != nil {
					return err
				}
			}

			user, err := app.Hub.Auth().SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Account %s created for %s\n", user.Username(), user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Username, "username", "", "hub username")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd.Context())

			session := app.Hub.Auth().Session(cmd.Context())
			if session == nil {
				pterm.Warning.Println("Not signed in")
				return hub.ErrNoSession
			}

			expiry := session.Expiry()
			printf(cmd, "user:     %s\n", session.User.Username())
			printf(cmd, "email:    %s\n", session.User.Email)
			printf(cmd, "expires:  %s (%s)\n", expiry.Format(time.RFC1123), humanize.Time(expiry))
			return nil
		},
	}
}
