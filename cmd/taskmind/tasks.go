package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taskmindbot/taskmind/internal/config"
	"github.com/taskmindbot/taskmind/internal/tasks"
)

// Styles for the task list
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	urgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func newTasksCmd() *cobra.Command {
	var showAnalytics bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List open tasks from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := tasks.NewStore(cfg.Data.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = store.Close() }()

			open, err := store.ListOpen(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderTaskList(open))

			if showAnalytics {
				a, err := store.GetAnalytics(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(renderAnalytics(a))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAnalytics, "analytics", false, "show completion stats")
	return cmd
}

// renderTaskList renders open tasks with priority highlighting.
func renderTaskList(open []*tasks.Task) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("📋 Open tasks (%d)", len(open))))
	sb.WriteString("\n")

	if len(open) == 0 {
		sb.WriteString(metaStyle.Render("Nothing open. Message the bot to add one."))
		return sb.String()
	}

	for i, t := range open {
		desc := t.Description
		switch t.Priority {
		case "Urgent":
			desc = urgentStyle.Render(desc)
		case "High":
			desc = highStyle.Render(desc)
		}
		sb.WriteString(fmt.Sprintf("%2d. %s", i+1, desc))

		var meta []string
		if t.Category != "" {
			meta = append(meta, t.Category)
		}
		if t.DueDate != "" {
			meta = append(meta, "due "+t.DueDate)
		}
		if len(meta) > 0 {
			sb.WriteString(" " + metaStyle.Render("("+strings.Join(meta, ", ")+")"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderAnalytics renders completion stats.
func renderAnalytics(a *tasks.Analytics) string {
	return fmt.Sprintf("%s\n%s",
		titleStyle.Render("📊 Analytics"),
		fmt.Sprintf("Total: %d  Completed: %d  Pending: %d  Rate: %.0f%%",
			a.Total, a.Completed, a.Pending, a.CompletionRate*100))
}
