package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"grandprix-booking/config"
	"grandprix-booking/internal/storage"
	"grandprix-booking/models"
	"grandprix-booking/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through users, tickets and an order against the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			system, cfg, err := openSystem(ctx)
			if err != nil {
				return err
			}
			defer closeSystem(ctx, system, cfg)

			out := cmd.OutOrStdout()
			if err := runDemo(ctx, out, system, cfg); err != nil {
				fmt.Fprintf(out, "\nERROR: %v\n", err)
				fmt.Fprintln(out, "\nDemonstration terminated due to an error.")
				return err
			}
			return nil
		},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func section(out io.Writer, title string) {
	fmt.Fprintln(out, strings.Repeat("-", 80))
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("-", 80))
}

func runDemo(ctx context.Context, out io.Writer, system *services.BookingSystem, cfg *config.Config) error {
	banner := strings.Repeat("=", 80)
	fmt.Fprintf(out, "\n%s\nGRAND PRIX EXPERIENCE TICKET BOOKING SYSTEM DEMO\n%s\n\n", banner, banner)

	// 1. User Creation
	section(out, "1. CREATING USERS")
	user, err := system.CreateUser(ctx, "USR-001", "john_doe", "password123", "john@example.com", "555-1234")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Regular User Created: %s\n", user)

	admin, err := system.CreateAdmin(ctx, "ADM-002", "admin_user", "admin123", "admin@example.com", 2, "Operations", "555-5678")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Admin User Created: %s\n\n", admin)

	// 2. Ticket Creation
	section(out, "2. CREATING TICKETS")
	single, err := admin.CreateTicket(models.KindSingleRace, "TKT-001", decimal.NewFromInt(200), date(2025, time.June, 15),
		"Main Grandstand", models.TicketParams{
			RaceName:     "Monaco Grand Prix",
			RaceCategory: models.CategoryPremium,
		})
	if err != nil {
		return err
	}
	if err := system.RegisterTicket(ctx, single); err != nil {
		return err
	}
	fmt.Fprintf(out, "Single Race Ticket Created: %s\n", single)
	fmt.Fprintf(out, "Base Price: $%s\n", single.BasePrice().StringFixed(2))
	fmt.Fprintf(out, "Calculated Price: $%s\n\n", single.CalculatePrice().StringFixed(2))

	season, err := admin.CreateTicket(models.KindSeason, "TKT-002", decimal.NewFromInt(1000), date(2025, time.January, 1),
		"VIP Lounge", models.TicketParams{
			SeasonYear:    2025,
			IncludedRaces: []string{"Monaco", "Silverstone", "Monza", "Singapore", "Abu Dhabi"},
			RaceDates: []time.Time{
				date(2025, time.May, 25),
				date(2025, time.July, 7),
				date(2025, time.September, 1),
				date(2025, time.September, 21),
				date(2025, time.December, 1),
			},
		})
	if err != nil {
		return err
	}
	if err := system.RegisterTicket(ctx, season); err != nil {
		return err
	}
	fmt.Fprintf(out, "Season Ticket Created: %s\n", season)
	fmt.Fprintf(out, "Base Price: $%s\n", season.BasePrice().StringFixed(2))
	fmt.Fprintf(out, "Calculated Price (with discount): $%s\n\n", season.CalculatePrice().StringFixed(2))

	// 3. Order Processing
	section(out, "3. PROCESSING ORDERS")
	order, err := system.CreateOrder(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "New Order Created: %s\n", order)

	for _, step := range []struct {
		label  string
		ticket models.Ticket
	}{
		{"Single Race", single},
		{"Season", season},
	} {
		if err := order.AddTicket(step.ticket); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %s Ticket to order.\n", step.label)
		fmt.Fprintf(out, "Order Status: %s\n", order)
		if err := system.UpdateOrder(ctx, order); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Setting payment method to Credit Card...")
	if err := order.SetPaymentMethod(models.PaymentCreditCard); err != nil {
		return err
	}

	fmt.Fprintln(out, "Attempting to confirm order...")
	if order.ConfirmOrder() {
		fmt.Fprintln(out, "SUCCESS: Order confirmed!")
		fmt.Fprintf(out, "Final Order Status: %s\n", order)
		if err := system.UpdateOrder(ctx, order); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, "ERROR: Could not confirm order.")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Attempting to cancel confirmed order...")
	if order.CancelAt(system.Today()) {
		fmt.Fprintln(out, "SUCCESS: Order cancelled.")
		if err := system.UpdateOrder(ctx, order); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, "NOTICE: Could not cancel order (already confirmed).")
	}
	fmt.Fprintln(out)

	// 4. System Status and Data Persistence
	section(out, "4. SYSTEM STATUS AND DATA PERSISTENCE")
	fmt.Fprintf(out, "User %s has %d orders in their history.\n", user.Username(), len(user.Orders()))
	fmt.Fprintf(out, "System Status: %s\n", system)

	fmt.Fprintln(out, "\nAll data has been saved to the following locations:")
	for _, c := range storage.Collections {
		fmt.Fprintf(out, "- %s\n", location(cfg, c))
	}
	fmt.Fprintf(out, "- %s\n", system.ActivityLogPath())

	fmt.Fprintln(out, "\nYou can restart the application and the data will be loaded from these locations.")
	fmt.Fprintf(out, "\n%s\nDEMONSTRATION COMPLETED SUCCESSFULLY\n%s\n", banner, banner)
	return nil
}

// location describes where a collection lives for the configured backend.
func location(cfg *config.Config, c storage.Collection) string {
	switch storage.Backend(cfg.StoreBackend) {
	case storage.BackendRedis:
		return fmt.Sprintf("redis %s:%s", cfg.RedisKeyPrefix, c)
	case storage.BackendSQL:
		return fmt.Sprintf("%s booking_snapshots[%s]", cfg.SQLDriver, c)
	default:
		return filepath.Join(cfg.DataDir, string(c)+".json")
	}
}
