package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/speedwagon-io/saltydog/internal/errs"
	"github.com/speedwagon-io/saltydog/internal/journal"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
)

func undeliveredCmd(opts *options) *cobra.Command {
	var (
		limit int
		purge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "undelivered",
		Short: "List alerts that could not be delivered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("%w: the journal is disabled, set journal.enabled", errs.ErrInvalidConfiguration)
			}

			log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)
			j, err := journal.NewSQLiteJournal(log, cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if purge > 0 {
				deleted, err := j.Purge(ctx, purge)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "purged %d entries older than %s\n", deleted, purge)
			}

			entries, err := j.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "no undelivered alerts")
				return nil
			}

			total, err := j.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "showing %d of %d undelivered alerts\n", len(entries), total)

			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-8s  %s\n    %s\n    reason: %s\n",
					e.RecordedAt.Local().Format(time.DateTime),
					e.Alert.Channel,
					e.Alert.ID,
					e.Alert.Body,
					e.Reason,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	cmd.Flags().DurationVar(&purge, "purge-older-than", 0, "delete entries older than this before listing")

	return cmd
}
