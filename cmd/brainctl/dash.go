package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"footybrain/internal/clientutil"
	"footybrain/internal/simulator"
	"footybrain/internal/sweep"
)

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Live TUI dashboard of sweep and season state",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newDashModel(newClient(apiBase))
			p := tea.NewProgram(m)
			_, err := p.Run()
			return err
		},
	}
}

const dashPollInterval = 4 * time.Second

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dashLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dashErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dashBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type dashModel struct {
	client  *clientutil.Client
	spinner spinner.Model

	sweepStatus sweep.Status
	tiers       []simulator.TierStatus
	err         error
	loading     bool
	lastPolled  time.Time
}

type dashTickMsg time.Time

type dashDataMsg struct {
	sweepStatus sweep.Status
	tiers       []simulator.TierStatus
	err         error
}

func newDashModel(client *clientutil.Client) dashModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = dashLabelStyle
	return dashModel{client: client, spinner: s, loading: true}
}

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), dashTick(), m.spinner.Tick)
}

func dashTick() tea.Cmd {
	return tea.Tick(dashPollInterval, func(t time.Time) tea.Msg { return dashTickMsg(t) })
}

func (m dashModel) fetch() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		msg := dashDataMsg{}

		rawSweep, err := client.SweepStatus(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		status, err := decodeField[sweep.Status](rawSweep, "status")
		if err != nil {
			msg.err = err
			return msg
		}
		msg.sweepStatus = status

		rawSeasons, err := client.SeasonsStatus(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		tiers, err := decodeField[[]simulator.TierStatus](rawSeasons, "tiers")
		if err != nil {
			msg.err = err
			return msg
		}
		msg.tiers = tiers
		return msg
	}
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case dashTickMsg:
		m.loading = true
		return m, tea.Batch(m.fetch(), dashTick())
	case dashDataMsg:
		m.loading = false
		m.lastPolled = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.sweepStatus = msg.sweepStatus
			m.tiers = msg.tiers
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m dashModel) View() string {
	title := dashTitleStyle.Render("footybrain dashboard")
	if m.loading {
		title += " " + m.spinner.View()
	}
	body := title + "\n\n"

	if m.err != nil {
		body += dashErrStyle.Render("poll failed: "+m.err.Error()) + "\n\n"
	}

	sweepLines := fmt.Sprintf(
		"%s %d\n%s %t\n%s %s",
		dashLabelStyle.Render("run count:"), m.sweepStatus.RunCount,
		dashLabelStyle.Render("scheduled today:"), m.sweepStatus.TodayIsScheduled,
		dashLabelStyle.Render("last sweep at:"), formatOptionalTime(m.sweepStatus.LastSweepAt),
	)
	body += dashBoxStyle.Render("Sweep\n" + sweepLines) + "\n\n"

	tierLines := ""
	for _, t := range m.tiers {
		tierLines += fmt.Sprintf("%-14s md %3d/%-3d  %s\n", t.Tier, t.CurrentMatchday, t.TotalMatchdays, t.Status)
	}
	if tierLines == "" {
		tierLines = "(no season data yet)\n"
	}
	body += dashBoxStyle.Render("Seasons\n" + tierLines)

	body += "\n" + dashLabelStyle.Render("press q to quit — polling every "+dashPollInterval.String())
	return body
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
