package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/baiirun/taskline/internal/model"
	"github.com/baiirun/taskline/internal/tui"
)

// ItemJSON is the JSON form of an item for --json output.
type ItemJSON struct {
	ID              int     `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	DurationMinutes int64   `json:"duration_minutes"`
	Start           *string `json:"start"`
	End             *string `json:"end"`
	Epic            *int    `json:"epic,omitempty"`
	SubTasks        []int   `json:"subtasks,omitempty"`
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toJSON(it model.Item) ItemJSON {
	out := ItemJSON{
		ID:              it.ID,
		Type:            string(it.Kind),
		Title:           it.Title,
		Description:     it.Description,
		Status:          string(it.Status),
		DurationMinutes: int64(it.Duration / time.Minute),
		Start:           formatTime(it.Start),
		End:             formatTime(it.EndTime()),
	}
	switch it.Kind {
	case model.KindSubTask:
		epic := it.EpicID
		out.Epic = &epic
	case model.KindEpic:
		out.SubTasks = append([]int{}, it.SubTaskIDs...)
	}
	return out
}

func writeJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func writeItemsJSON(cmd *cobra.Command, items []model.Item) error {
	out := make([]ItemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toJSON(it))
	}
	return writeJSON(cmd, out)
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func windowCell(it model.Item) string {
	if !it.HasStart() {
		return "-"
	}
	return it.Start.Format(startLayout) + " - " + it.EndTime().Format(startLayout)
}

// printTable renders items one per row. Subtasks show their epic id.
func printTable(w io.Writer, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		epic := ""
		if it.Kind == model.KindSubTask {
			epic = strconv.Itoa(it.EpicID)
		}
		rows = append(rows, []string{
			strconv.Itoa(it.ID), string(it.Kind), string(it.Status), it.Title, windowCell(it), epic,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TYPE", "STATUS", "TITLE", "WINDOW", "EPIC").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func printDetail(w io.Writer, it model.Item) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	field("ID", strconv.Itoa(it.ID))
	field("Type", string(it.Kind))
	field("Title", it.Title)
	field("Status", string(it.Status))
	if it.Description != "" {
		field("Description", it.Description)
	}
	if it.HasStart() {
		field("Start", it.Start.Format(startLayout))
		field("End", it.EndTime().Format(startLayout))
		field("Duration", it.Duration.String())
	}
	switch it.Kind {
	case model.KindSubTask:
		field("Epic", strconv.Itoa(it.EpicID))
	case model.KindEpic:
		ids := make([]string, 0, len(it.SubTaskIDs))
		for _, id := range it.SubTaskIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		field("Subtasks", fmt.Sprint(ids))
	}
}

func (a *app) listCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally of one kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []model.Item
			switch kind {
			case "":
				items = append(items, a.mgr.Tasks()...)
				for _, epic := range a.mgr.Epics() {
					items = append(items, epic)
					subs, err := a.mgr.SubTasksByEpic(epic.ID)
					if err != nil {
						return err
					}
					items = append(items, subs...)
				}
			case "task", "tasks":
				items = a.mgr.Tasks()
			case "epic", "epics":
				items = a.mgr.Epics()
			case "subtask", "subtasks":
				items = a.mgr.SubTasks()
			default:
				return fmt.Errorf("unknown kind %q (want task, epic or subtask)", kind)
			}

			if a.jsonOut {
				return writeItemsJSON(cmd, items)
			}
			printTable(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list this kind: task, epic or subtask")
	return cmd
}

func (a *app) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show scheduled tasks and subtasks by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.mgr.PrioritizedTasks()
			if a.jsonOut {
				return writeItemsJSON(cmd, items)
			}
			printTable(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recently viewed items, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.mgr.History()
			if a.jsonOut {
				return writeItemsJSON(cmd, items)
			}
			printTable(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(tui.New(a.mgr), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}
			return nil
		},
	}
}
