package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
)

func buildCmd(c *cli) *cobra.Command {
	var withStats bool

	cmd := &cobra.Command{
		Use:   "build <prompt...>",
		Short: "Build a queue from a mood prompt and save it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return errors.New("prompt is required")
			}
			if err := c.cfg.RequireCredentials(); err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			var spinner *pterm.SpinnerPrinter
			if !c.json {
				spinner, _ = pterm.DefaultSpinner.Start("Building queue for " + prompt)
			}
			res, err := c.app.Orchestrator.BuildQueue(ctx, prompt)
			if spinner != nil {
				if err != nil {
					spinner.Fail(err.Error())
				} else {
					spinner.Success(fmt.Sprintf("%d songs", res.Queue.Len()))
				}
			}
			if err != nil {
				return err
			}

			var stats map[string]domain.MediaStats
			if withStats {
				stats, err = c.app.Orchestrator.Stats(ctx, mediaIDs(res.Queue.Tracks()))
				if err != nil {
					c.log.Sugar().Warnf("stats unavailable: %v", err)
				}
			}

			rec := domain.NewPersistedQueue(res, nowUTC())
			return c.printQueue(cmd.OutOrStdout(), rec, stats)
		},
	}
	cmd.Flags().String("strategy", "", "suggestion strategy (songs or playlist)")
	cmd.Flags().BoolVar(&withStats, "stats", false, "include view and like counts")
	return cmd
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			rec, err := c.app.Orchestrator.LastQueue(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return errors.New("no saved queue; run moodctl build first")
			}
			if err != nil {
				return err
			}
			return c.printQueue(cmd.OutOrStdout(), rec, nil)
		},
	}
}

func clearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the saved queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			if err := c.app.Orchestrator.ClearQueue(ctx); err != nil {
				return err
			}
			if c.json {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"cleared": true})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint("Saved queue cleared"))
			return err
		},
	}
}

func defaultsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "List the built-in startup queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := domain.PersistedQueue{Songs: fallback.DefaultTracks()}
			return c.printQueue(cmd.OutOrStdout(), rec, nil)
		},
	}
}

func mediaIDs(tracks []domain.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.MediaID)
	}
	return ids
}
