// Package productctl implements the maintenance CLI for the product store.
package productctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-manager/internal/app"
	"product-manager/internal/config"
	"product-manager/internal/database"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	envFile string
	timeout time.Duration
}

// Result is printed as JSON after every command.
type Result struct {
	OK      bool           `json:"ok"`
	Command string         `json:"command"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NewRootCommand builds the productctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "productctl",
		Short:         "Product store maintenance tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "operation timeout")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newStatusCommand(opts),
		newResyncCommand(opts),
		newRelayCommand(opts),
		newPurgeCommand(opts),
	)
	return cmd
}

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, "migrate", func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (map[string]any, error) {
				pool, err := database.NewPool(ctx, cfg.Database, logger)
				if err != nil {
					return nil, err
				}
				defer pool.Close()

				if err := database.Migrate(ctx, pool, logger); err != nil {
					return nil, err
				}
				return map[string]any{"database": cfg.Database.Database}, nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report pending outbox events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, "status", func(ctx context.Context, a *app.App) (map[string]any, error) {
				pending, err := a.Outbox.CountPending(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"mirror_enabled": a.Syncer != nil,
					"pending_events": pending,
				}, nil
			})
		},
	}
}

func newResyncCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Rebuild the mirror from the primary store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, "resync", func(ctx context.Context, a *app.App) (map[string]any, error) {
				if a.Syncer == nil {
					return nil, errMirrorDisabled
				}
				result, err := a.Syncer.Resync(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"upserted": result.Upserted, "removed": result.Removed}, nil
			})
		},
	}
}

func newRelayCommand(opts *options) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Deliver pending outbox events to the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !once {
				// A long-running relay must not be bounded by --timeout.
				opts.timeout = 0
			}
			return withApp(cmd, opts, "relay", func(ctx context.Context, a *app.App) (map[string]any, error) {
				if a.Syncer == nil {
					return nil, errMirrorDisabled
				}
				if once {
					delivered, err := a.Syncer.DrainOnce(ctx)
					if err != nil {
						return nil, err
					}
					return map[string]any{"delivered": delivered}, nil
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				a.Syncer.Run(ctx)
				return map[string]any{"stopped": true}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "deliver a single batch and exit")
	return cmd
}

func newPurgeCommand(opts *options) *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete products dated before a cutoff, archiving them when enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := ParseCutoff(before)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, "purge", func(ctx context.Context, a *app.App) (map[string]any, error) {
				removed, err := a.Deleter.DeleteProductsBeforeThan(ctx, cutoff)
				if err != nil {
					return nil, err
				}
				return map[string]any{"cutoff": cutoff.Format(time.RFC3339), "removed": removed}, nil
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "cutoff as RFC3339 timestamp or YYYY-MM-DD (UTC)")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}

var errMirrorDisabled = fmt.Errorf("mongo mirror is disabled (set MONGO_ENABLED=true)")

// ParseCutoff accepts an RFC3339 timestamp or a calendar date, read as
// midnight UTC.
func ParseCutoff(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid cutoff %q: use RFC3339 or YYYY-MM-DD", value)
}

type configFunc func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (map[string]any, error)

type appFunc func(ctx context.Context, a *app.App) (map[string]any, error)

func withApp(cmd *cobra.Command, opts *options, name string, fn appFunc) error {
	return execute(cmd, opts, name, func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (map[string]any, error) {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer a.Close(context.Background())
		return fn(ctx, a)
	})
}

func execute(cmd *cobra.Command, opts *options, name string, fn configFunc) error {
	if opts.envFile != "" {
		if err := os.Setenv("ENV_FILE", opts.envFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return printResult(cmd.OutOrStdout(), name, nil, fmt.Errorf("failed to load configuration: %w", err))
	}
	logger := config.NewLogger(cfg.Logger).With().Str("command", name).Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	details, err := fn(ctx, cfg, logger)
	return printResult(cmd.OutOrStdout(), name, details, err)
}

// printResult writes the JSON result and passes err through.
func printResult(w io.Writer, name string, details map[string]any, err error) error {
	result := Result{OK: err == nil, Command: name, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
