package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"footybrain/internal/leagues"
	"footybrain/internal/squads"
	"footybrain/internal/sweep"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) { success.Println(msg) }
func printWarn(msg string)    { warn.Println(msg) }
func printInfo(msg string)    { neutral.Println(msg) }

func decodeField[T any](raw map[string]any, key string) (T, error) {
	var out T
	val, ok := raw[key]
	if !ok {
		return out, nil
	}
	body, err := json.Marshal(val)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, err
	}
	return out, nil
}

func renderSweepStatus(raw map[string]any) error {
	status, err := decodeField[sweep.Status](raw, "status")
	if err != nil {
		return err
	}
	accent.Println("\n== SWEEP STATUS ==")
	fmt.Printf("Run count:          %d\n", status.RunCount)
	fmt.Printf("Scheduled today:    %t\n", status.TodayIsScheduled)
	if status.LastSweepUTCDay != nil {
		fmt.Printf("Last sweep UTC day: %d\n", *status.LastSweepUTCDay)
	} else {
		printInfo("Last sweep UTC day: never")
	}
	if status.LastSweepAt != nil {
		fmt.Printf("Last sweep at:      %s\n", status.LastSweepAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
	return nil
}

func renderSweepResult(raw map[string]any) error {
	result, err := decodeField[sweep.Result](raw, "result")
	if err != nil {
		return err
	}
	accent.Println("\n== SWEEP RUN ==")
	if result.AlreadyRanToday {
		printWarn("Already ran today — no-op.")
		return nil
	}
	if result.NotScheduled {
		printWarn("Today is not a scheduled sweep day — no-op (use --force to override).")
		return nil
	}
	fmt.Printf("Total active:   %d\n", result.TotalActive)
	fmt.Printf("Promotions:     %d\n", len(result.Promotions))
	fmt.Printf("Skips:          %d\n", len(result.Skips))
	fmt.Printf("Completions:    %d\n", len(result.Completions))
	if len(result.Errors) > 0 {
		warn.Printf("Errors:         %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s: %s\n", e.PlayerID, e.Err)
		}
	}
	fmt.Println()
	printSuccess("Sweep pass complete.")
	return nil
}

func renderLeagueTable(raw map[string]any, tier string) error {
	rows, err := decodeField[[]leagues.TeamSeasonView](raw, "table")
	if err != nil {
		return err
	}
	accent.Printf("\n== %s TABLE ==\n", strings.ToUpper(tier))
	if len(rows) == 0 {
		printInfo("No active season for this tier yet.")
		return nil
	}
	fmt.Printf("%-3s %-22s %4s %4s %4s %4s %5s %5s %4s %6s\n",
		"#", "CLUB", "P", "W", "D", "L", "GF", "GA", "GD", "PTS")
	for i, row := range rows {
		fmt.Printf("%-3d %-22s %4d %4d %4d %4d %5d %5d %4d %6d\n",
			i+1, truncate(row.ClubName, 22), row.Played, row.Won, row.Drawn, row.Lost,
			row.GoalsFor, row.GoalsAgainst, row.GoalDifference, row.Points)
	}
	fmt.Println()
	return nil
}

func renderFixtures(raw map[string]any, tier string) error {
	rows, err := decodeField[[]leagues.Fixture](raw, "fixtures")
	if err != nil {
		return err
	}
	accent.Printf("\n== %s FIXTURES ==\n", strings.ToUpper(tier))
	if len(rows) == 0 {
		printInfo("No upcoming fixtures match that filter.")
		return nil
	}
	fmt.Printf("%-4s %-16s vs %-16s\n", "MD", "HOME", "AWAY")
	for _, f := range rows {
		fmt.Printf("%-4d %-16s vs %-16s\n", f.Matchday, truncate(f.HomeClubID, 16), truncate(f.AwayClubID, 16))
	}
	fmt.Println()
	return nil
}

func renderSquadsLeaderboard(raw map[string]any) error {
	rows, err := decodeField[[]squads.Squad](raw, "squads")
	if err != nil {
		return err
	}
	accent.Println("\n== SQUAD LEADERBOARD ==")
	if len(rows) == 0 {
		printInfo("No squads yet.")
		return nil
	}
	fmt.Printf("%-3s %-22s %-6s %8s %8s %5s\n", "#", "NAME", "TAG", "POINTS", "UNSPENT", "LEVEL")
	for i, s := range rows {
		tag := ""
		if s.Tag != nil {
			tag = *s.Tag
		}
		fmt.Printf("%-3d %-22s %-6s %8d %8d %5d\n", i+1, truncate(s.Name, 22), tag, s.TotalPoints, s.UnspentPoints, s.Level)
	}
	fmt.Println()
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
