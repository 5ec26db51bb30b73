package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/taskline/internal/model"
)

// parseStart reads a --start value in the local zone. Empty or "none" means
// unscheduled.
func parseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(startLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q (want %s)", s, startLayout)
	}
	return t, nil
}

func (a *app) addCmd() *cobra.Command {
	var (
		desc     string
		start    string
		duration time.Duration
		epicID   int
	)

	cmd := &cobra.Command{
		Use:   "add <task|epic|subtask> <title>",
		Short: "Create a task, epic or subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			startAt, err := parseStart(start)
			if err != nil {
				return err
			}

			var item model.Item
			switch model.Kind(args[0]) {
			case model.KindTask:
				item = model.NewTask(title, desc, duration, startAt)
			case model.KindEpic:
				if start != "" || duration != 0 {
					return fmt.Errorf("epic timing is derived from its subtasks")
				}
				item = model.NewEpic(title, desc)
			case model.KindSubTask:
				if !cmd.Flags().Changed("epic") {
					return fmt.Errorf("subtask requires --epic")
				}
				item = model.NewSubTask(title, desc, epicID, duration, startAt)
			default:
				return fmt.Errorf("unknown kind %q (want task, epic or subtask)", args[0])
			}

			created, err := a.mgr.Create(item)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd, toJSON(created))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d\n", created.Kind, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringVar(&start, "start", "", "Start time ("+startLayout+")")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Duration in whole minutes (e.g. 90m)")
	cmd.Flags().IntVar(&epicID, "epic", 0, "Owning epic id (subtasks only)")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		title    string
		desc     string
		status   string
		start    string
		duration time.Duration
		epicID   int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an item",
		Long: `Change fields of an item. Only flags that are given are applied.
For epics only --title and --desc take effect; status and timing follow the subtasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := findItem(a.mgr, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				item.Title = title
			}
			if flags.Changed("desc") {
				item.Description = desc
			}
			if flags.Changed("status") {
				s := model.Status(strings.ToUpper(status))
				if !s.IsValid() {
					return fmt.Errorf("invalid status %q (want NEW, IN_PROGRESS or DONE)", status)
				}
				item.Status = s
			}
			if flags.Changed("start") {
				if item.Start, err = parseStart(start); err != nil {
					return err
				}
			}
			if flags.Changed("duration") {
				item.Duration = duration
			}
			if flags.Changed("epic") {
				item.EpicID = epicID
			}

			updated, err := a.mgr.Update(item)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd, toJSON(updated))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", updated.Kind, updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status: NEW, IN_PROGRESS or DONE")
	cmd.Flags().StringVar(&start, "start", "", "New start time ("+startLayout+"), or none")
	cmd.Flags().DurationVar(&duration, "duration", 0, "New duration in whole minutes")
	cmd.Flags().IntVar(&epicID, "epic", 0, "Move a subtask to another epic")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show item details and record the view in history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			found, err := findItem(a.mgr, id)
			if err != nil {
				return err
			}

			var item model.Item
			switch found.Kind {
			case model.KindEpic:
				item, err = a.mgr.Epic(id)
			case model.KindSubTask:
				item, err = a.mgr.SubTask(id)
			default:
				item, err = a.mgr.Task(id)
			}
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(cmd, toJSON(item))
			}
			printDetail(cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove an item; removing an epic removes its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := findItem(a.mgr, id)
			if err != nil {
				return err
			}

			switch item.Kind {
			case model.KindEpic:
				err = a.mgr.RemoveEpic(id)
			case model.KindSubTask:
				err = a.mgr.RemoveSubTask(id)
			default:
				err = a.mgr.RemoveTask(id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", item.Kind, id)
			return nil
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "clear <tasks|epics|subtasks>",
		Short:     "Remove every item of one kind",
		Long:      `Remove every item of one kind. Clearing epics also clears all subtasks.`,
		ValidArgs: []string{"tasks", "epics", "subtasks"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch args[0] {
			case "tasks":
				err = a.mgr.ClearTasks()
			case "epics":
				err = a.mgr.ClearEpics()
			case "subtasks":
				err = a.mgr.ClearSubTasks()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
			return nil
		},
	}
}
