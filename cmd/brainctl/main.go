package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"footybrain/internal/clientutil"
	"footybrain/internal/config"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	var secretFlag string

	root := &cobra.Command{
		Use:          "brainctl",
		Short:        "footybrain operator CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "footybrain API base URL")
	root.PersistentFlags().StringVar(&secretFlag, "secret", "", "cron bearer secret (falls back to $CRON_SECRET, a saved secret file, or a prompt)")

	root.AddCommand(
		newSweepCmd(&apiBase, &secretFlag),
		newLeaguesCmd(&apiBase),
		newSquadsCmd(&apiBase),
		newGroupCmd(),
		newDashCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *clientutil.Client {
	return clientutil.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newSweepCmd(apiBase, secretFlag *string) *cobra.Command {
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Promotion/completion sweep commands",
	}
	sweep.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current sweep state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SweepStatus(ctx)
			if err != nil {
				return err
			}
			return renderSweepStatus(out)
		},
	})
	var force bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a sweep pass (cron-authenticated)",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := clientutil.ResolveCronSecret(*secretFlag)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SweepRun(ctx, secret, force)
			if err != nil {
				return err
			}
			return renderSweepResult(out)
		},
	}
	runCmd.Flags().BoolVar(&force, "force", false, "run even when today isn't a scheduled sweep day")
	sweep.AddCommand(runCmd)
	return sweep
}

func newLeaguesCmd(apiBase *string) *cobra.Command {
	leagues := &cobra.Command{
		Use:   "leagues",
		Short: "League table and fixture commands",
	}
	leagues.AddCommand(&cobra.Command{
		Use:   "table [tier]",
		Short: "Show current standings for a tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			out, err := newClient(apiBase).LeaguesTable(ctx, args[0])
			if err != nil {
				return err
			}
			return renderLeagueTable(out, args[0])
		},
	})
	var matchday int
	fixturesCmd := &cobra.Command{
		Use:   "fixtures [tier]",
		Short: "Show upcoming fixtures for a tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			out, err := newClient(apiBase).LeaguesFixtures(ctx, args[0], matchday)
			if err != nil {
				return err
			}
			return renderFixtures(out, args[0])
		},
	}
	fixturesCmd.Flags().IntVar(&matchday, "matchday", 0, "scope to a single matchday")
	leagues.AddCommand(fixturesCmd)
	return leagues
}

func newSquadsCmd(apiBase *string) *cobra.Command {
	squads := &cobra.Command{
		Use:   "squads",
		Short: "Squad leaderboard commands",
	}
	var limit int
	lbCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top coaching squads",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SquadsLeaderboard(ctx, limit)
			if err != nil {
				return err
			}
			return renderSquadsLeaderboard(out)
		},
	}
	lbCmd.Flags().IntVar(&limit, "limit", 0, "max rows to show (server default applies when unset)")
	squads.AddCommand(lbCmd)
	return squads
}
