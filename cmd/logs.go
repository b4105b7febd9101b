package cmd

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kilianp07/prodplan/core/planlog"
	"github.com/kilianp07/prodplan/infra/logger"
)

var logsOpts struct {
	start string
	end   string
	plant string
	limit int
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List stored production plans",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsOpts.start, "start", "", "only plans at or after this RFC3339 time")
	logsCmd.Flags().StringVar(&logsOpts.end, "end", "", "only plans at or before this RFC3339 time")
	logsCmd.Flags().StringVar(&logsOpts.plant, "plant", "", "only plans containing this unit")
	logsCmd.Flags().IntVar(&logsOpts.limit, "limit", 0, "maximum number of plans, 0 for all")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	if cfg.Store.Backend == planlog.BackendNone {
		return fmt.Errorf("no plan store configured (store.backend is %q)", cfg.Store.Backend)
	}

	q := planlog.Query{Plant: logsOpts.plant, Limit: logsOpts.limit}
	if q.Start, err = parseFlagTime("start", logsOpts.start); err != nil {
		return err
	}
	if q.End, err = parseFlagTime("end", logsOpts.end); err != nil {
		return err
	}

	store, err := planlog.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	recs, err := store.Query(contextOrBackground(cmd), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func parseFlagTime(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be an RFC3339 time: %w", name, err)
	}
	return t, nil
}
