package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/baiirun/taskline/internal/config"
	"github.com/baiirun/taskline/internal/manager"
	"github.com/baiirun/taskline/internal/model"
	"github.com/baiirun/taskline/internal/store"
)

// startLayout is how --start values are written on the command line.
const startLayout = "02.01.2006 15:04"

// app holds state shared by every command in one invocation.
type app struct {
	backend string
	path    string
	jsonOut bool

	mgr    manager.Manager
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "taskline",
		Short: "Plan tasks, epics and subtasks on a conflict-free timeline",
		Long: `A CLI for tracking tasks, epics and subtasks. Scheduled items may not
overlap in time; epic status and time window follow their subtasks.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend: csv, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&a.path, "path", "", "Data file (default ~/.taskline/tasks.csv or tasks.db)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")

	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.updateCmd())
	rootCmd.AddCommand(a.showCmd())
	rootCmd.AddCommand(a.rmCmd())
	rootCmd.AddCommand(a.clearCmd())
	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.scheduleCmd())
	rootCmd.AddCommand(a.historyCmd())
	rootCmd.AddCommand(a.tuiCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// open loads the configuration, applies flag overrides and opens the manager
// over the configured store.
func (a *app) open(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Store.Backend = a.backend
	}
	if a.path != "" {
		cfg.Store.Path = a.path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	opts := manager.DefaultOptions()
	opts.PurgeHistoryOnDelete = cfg.History.PurgeOnDelete

	mgr, err := manager.Open(st, opts)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}
	a.mgr, a.closer = mgr, closer
	return nil
}

func (a *app) close(cmd *cobra.Command, args []string) error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// openStore picks the store for cfg. The memory backend has no store.
func openStore(cfg *config.Config) (manager.Store, io.Closer, error) {
	if cfg.Store.Backend == config.BackendMemory {
		return nil, nil, nil
	}
	path, err := cfg.DataPath()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.Backend == config.BackendSQLite {
		db, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
	return store.NewCSVStore(path), nil, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// findItem looks id up across all kinds without touching the history.
func findItem(mgr manager.Manager, id int) (model.Item, error) {
	for _, group := range [][]model.Item{mgr.Tasks(), mgr.Epics(), mgr.SubTasks()} {
		for _, it := range group {
			if it.ID == id {
				return it, nil
			}
		}
	}
	return model.Item{}, fmt.Errorf("%w: item %d", manager.ErrNotFound, id)
}

// exitCode maps domain errors to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, manager.ErrTimeConflict):
		return 3
	case errors.Is(err, manager.ErrNotFound):
		return 4
	}
	return 1
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
