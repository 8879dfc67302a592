package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_acceptance/internal/adapters/aut"
	"hotel_acceptance/internal/adapters/observability"
	redisad "hotel_acceptance/internal/adapters/redis"
	"hotel_acceptance/internal/app"
	"hotel_acceptance/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workers int

	root := &cobra.Command{
		Use:          "janitor",
		Short:        "Inspect and remove bookings the acceptance suite left on the AUT",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "concurrent deletes (default JANITOR_WORKERS)")

	root.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List ledger entries still awaiting removal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(workers)
			if err != nil {
				return err
			}
			entries, err := svc.Pending(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				log.Info().
					Int64("booking_id", e.BookingID).
					Int64("room_id", e.RoomID).
					Str("run_id", e.RunID).
					Str("scenario", e.ScenarioID).
					Time("checkin", e.CheckIn).
					Time("checkout", e.CheckOut).
					Msg("pending")
			}
			log.Info().Int("count", len(entries)).Msg("pending bookings")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every pending booking from the AUT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(workers)
			if err != nil {
				return err
			}
			rep, err := svc.Purge(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range rep.Errs {
				log.Warn().Err(e).Msg("purge failed")
			}
			log.Info().
				Int("deleted", rep.Deleted).
				Int("missing", rep.Missing).
				Int("failed", rep.Failed).
				Msg("purge completed")
			if rep.Failed > 0 {
				return errors.New("some bookings could not be removed")
			}
			return nil
		},
	})
	return root
}

func newService(workers int) (*app.CleanupService, error) {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is required: the ledger lives in redis")
	}
	client, err := aut.New(cfg.APIBaseURL, cfg.AdminUsername, cfg.AdminPassword, cfg.APIRPS)
	if err != nil {
		return nil, fmt.Errorf("aut client: %w", err)
	}
	if workers <= 0 {
		workers = cfg.JanitorWorkers
	}
	ledger := redisad.NewLedger(redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB))

	log.Info().
		Str("api", cfg.APIBaseURL).
		Int("workers", workers).
		Msg("janitor starting")
	return app.NewCleanupService(client, ledger, workers, log.Logger), nil
}
