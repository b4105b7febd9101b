package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/prodplan/app"
	"github.com/kilianp07/prodplan/app/plugins"
	"github.com/kilianp07/prodplan/core/planner"
	"github.com/kilianp07/prodplan/infra/logger"
	"github.com/kilianp07/prodplan/pkg/export"
)

var planOpts struct {
	input  string
	format string
	out    string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a production plan from a payload file",
	Example: "  prodplan plan -i payload.json\n" +
		"  prodplan plan -i payload.yaml --format csv --out plan.csv",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOpts.input, "input", "i", "-", "payload file (json or yaml), - for stdin")
	planCmd.Flags().StringVarP(&planOpts.format, "format", "f", export.FormatJSON, "output format: json or csv")
	planCmd.Flags().StringVarP(&planOpts.out, "out", "o", "", "output file, stdout when empty")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	doc, err := readPayload(planOpts.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	filter, err := plugins.NewFilter(cfg.Planner.Filter)
	if err != nil {
		return err
	}
	svc := app.NewPlanService(
		planner.New(planner.WithFilter(filter), planner.WithMaxSearchNodes(cfg.Planner.MaxSearchNodes)),
		app.WithServiceLogger(logger.New("plan")),
	)
	res, err := svc.Compute(contextOrBackground(cmd), doc)
	if err != nil {
		return err
	}
	if !res.Outcome.Feasible {
		logger.New("plan").Warnf("no feasible combination, returning an all-zero plan")
	}

	w := cmd.OutOrStdout()
	if planOpts.out != "" {
		f, err := os.Create(planOpts.out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return export.Write(w, planOpts.format, res.Plan)
}

// readPayload decodes a JSON or YAML request document. Stdin is read as JSON.
func readPayload(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode payload: empty document")
	}
	return doc, nil
}
