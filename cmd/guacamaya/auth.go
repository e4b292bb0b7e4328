package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"guacamaya/internal/service/auth"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the demo user kept in device storage",
	}

	signin := &cobra.Command{
		Use:   "signin <email>",
		Short: "Sign in as the local part of email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAuth(cmd.Context(), func(svc *auth.Service) error {
				u, err := svc.SignIn(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Hola, %s\n", u.Name)
				return nil
			})
		},
	}

	var first, last string
	signup := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create the demo user and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAuth(cmd.Context(), func(svc *auth.Service) error {
				u, err := svc.SignUp(cmd.Context(), first, last, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Hola, %s\n", u.Name)
				return nil
			})
		},
	}
	signup.Flags().StringVar(&first, "first", "", "first name")
	signup.Flags().StringVar(&last, "last", "", "last name")

	signout := &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAuth(cmd.Context(), func(svc *auth.Service) error {
				return svc.SignOut(cmd.Context())
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAuth(cmd.Context(), func(svc *auth.Service) error {
				u, err := svc.CurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				if u == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "invitado")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Name, u.Email)
				return nil
			})
		},
	}

	cmd.AddCommand(signin, signup, signout, whoami)
	return cmd
}

func (a *app) withAuth(ctx context.Context, fn func(*auth.Service) error) error {
	kv, err := openDeviceStore(ctx, a.cfg.Device)
	if err != nil {
		return fmt.Errorf("open device storage: %w", err)
	}
	defer func() { _ = kv.Close() }()
	return fn(auth.NewService(kv, a.logger))
}
