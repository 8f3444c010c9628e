package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	rolllifecycle "github.com/aretw0/todoroll/pkg/adapters/lifecycle"
	"github.com/aretw0/todoroll/pkg/adapters/notify"
	"github.com/aretw0/todoroll/pkg/adapters/settings"
	"github.com/aretw0/todoroll/pkg/core"
	"github.com/aretw0/todoroll/pkg/trigger"
)

var (
	runInterval     time.Duration
	runReadyTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep the todo note rolled over until interrupted",
	Long: `Install the rollover triggers for the vault and keep running:
a check once the vault is indexed, then a check every --interval.
In onClick mode no timer is installed; press Enter to roll over.
Edits to .todoroll/settings.json are applied without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		n := notify.Multi{
			notify.NewTerminal(cmd.OutOrStdout()),
			notify.NewLogger(logger.With("component", "notifier")),
		}

		v, err := openVault(ctx, cmd, n)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		current, err := v.Settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		inst := trigger.New(v.Service,
			trigger.WithLogger(logger),
			trigger.WithReady(v.Ready()),
			trigger.WithInterval(runInterval),
			trigger.WithReadyTimeout(runReadyTimeout),
		)
		if err := inst.Start(ctx, current); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = inst.Stop(stopCtx)
		}()

		logEvents(ctx, logger, rolllifecycle.NewSource(v.Service))

		var changes <-chan string
		if v.Repo != nil {
			changes, err = v.Repo.WatchSystemFile(ctx, settings.FileName)
			if err != nil {
				logger.Warn("settings hot reload disabled", "error", err)
			}
		}

		clicks := readClicks(ctx, cmd.InOrStdin())

		logger.Info("todoroll running", "vault", v.Service.Storage().ID(), "mode", current.GenerationMode)
		for {
			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil

			case _, ok := <-changes:
				if !ok {
					changes = nil
					continue
				}
				next, err := v.Settings.Load(ctx)
				if err != nil {
					logger.Warn("ignoring invalid settings change", "error", err)
					continue
				}
				if next == inst.Settings() {
					continue
				}
				if err := inst.Reinstall(ctx, next); err != nil {
					return fmt.Errorf("failed to reinstall triggers: %w", err)
				}
				logger.Info("settings reloaded", "mode", next.GenerationMode, "n_days", next.NDays, "anchor", next.AnchorISODate)

			case _, ok := <-clicks:
				if !ok {
					clicks = nil
					continue
				}
				if _, err := inst.Click(ctx); err != nil && !errors.Is(err, core.ErrRolloverInProgress) {
					logger.Warn("manual rollover", "error", err)
				}
			}
		}
	},
}

// logEvents logs every rollover outcome published by the service.
func logEvents(ctx context.Context, logger *slog.Logger, src lifecycle.Source) {
	if err := src.Start(ctx); err != nil {
		logger.Warn("rollover events unavailable", "error", err)
		return
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range src.Events() {
			logger.Debug("rollover event", "event", e.String())
		}
		return nil
	})
}

// readClicks turns each line read from r into a manual trigger.
func readClicks(ctx context.Context, r io.Reader) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func init() {
	runCmd.Flags().DurationVar(&runInterval, "interval", trigger.DefaultInterval, "Period of the recurring check")
	runCmd.Flags().DurationVar(&runReadyTimeout, "ready-timeout", trigger.DefaultReadyTimeout, "Fallback delay of the startup check")
	rootCmd.AddCommand(runCmd)
}
