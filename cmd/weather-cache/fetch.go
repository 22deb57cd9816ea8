package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch LOCATION...",
		Short: "Fetch snapshots for one or more locations and print them as JSON",
		Example: `  weather-cache fetch "Pittsburgh, PA"
  weather-cache fetch "Pittsburgh, PA" "Boston, MA" --timeout 5s`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			c, err := build(cfg, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			snaps, err := c.cache.GetMany(ctx, args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	return cmd
}
