package cmd

import (
	"errors"
	"fmt"

	"grandprix-booking/internal/status"
	"grandprix-booking/internal/storage"
	"grandprix-booking/utils"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show repository statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			system, cfg, err := openSystem(ctx)
			if err != nil {
				return err
			}
			defer closeSystem(ctx, system, cfg)

			out := cmd.OutOrStdout()
			stats := system.Stats()
			fmt.Fprintf(out, "System Status: %s\n", system)
			fmt.Fprintf(out, "Admins: %d\n", stats.Admins)
			fmt.Fprintf(out, "Store: %s (supported: %v)\n", cfg.StoreBackend, storage.SupportedBackends())
			fmt.Fprintf(out, "Activity log: %s\n", system.ActivityLogPath())
			for _, name := range system.Usernames() {
				orders, _ := system.OrdersFor(name)
				fmt.Fprintf(out, "- %s: %d orders\n", name, len(orders))
			}
			return nil
		},
	}
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		id, password, email, phone, department string
		level                                  int
		admin                                  bool
	)

	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a user or admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			system, cfg, err := openSystem(ctx)
			if err != nil {
				return err
			}
			defer closeSystem(ctx, system, cfg)

			username := args[0]
			out := cmd.OutOrStdout()
			if admin {
				if id == "" {
					id = utils.NewID("ADM")
				}
				a, err := system.CreateAdmin(ctx, id, username, password, email, level, department, phone)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Admin User Created: %s\n", a)
				return nil
			}

			if id == "" {
				id = utils.NewID("USR")
			}
			u, err := system.CreateUser(ctx, id, username, password, email, phone)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Regular User Created: %s\n", u)
			return nil
		},
	}
	create.Flags().StringVar(&id, "id", "", "account id (generated when empty)")
	create.Flags().StringVar(&password, "password", "", "password, at least 6 characters")
	create.Flags().StringVar(&email, "email", "", "email address")
	create.Flags().StringVar(&phone, "phone", "", "phone number")
	create.Flags().BoolVar(&admin, "admin", false, "create an admin account")
	create.Flags().IntVar(&level, "level", 1, "admin level (1-3)")
	create.Flags().StringVar(&department, "department", "", "admin department")
	_ = create.MarkFlagRequired("password")
	_ = create.MarkFlagRequired("email")

	userCmd.AddCommand(create)
	return userCmd
}

func newVerifyCmd() *cobra.Command {
	var password string

	verify := &cobra.Command{
		Use:   "verify <username>",
		Short: "Check a password against a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			system, cfg, err := openSystem(ctx)
			if err != nil {
				return err
			}
			defer closeSystem(ctx, system, cfg)

			u, err := system.Authenticate(args[0], password)
			if errors.Is(err, status.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Invalid username or password")
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verified %s\n", u)
			return nil
		},
	}
	verify.Flags().StringVar(&password, "password", "", "password to check")
	_ = verify.MarkFlagRequired("password")
	return verify
}
