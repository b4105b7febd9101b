// Package export writes production plans to JSON and CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kilianp07/prodplan/core/model"
)

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// WriteJSON writes the plan to w as a JSON array.
func WriteJSON(w io.Writer, plan model.ProductionPlan) error {
	enc := json.NewEncoder(w)
	return enc.Encode(nonNil(plan))
}

// WriteIndentedJSON writes the plan with a four space indent.
func WriteIndentedJSON(w io.Writer, plan model.ProductionPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(nonNil(plan))
}

// WriteCSV writes the plan to w as "name,p" rows with a header line.
func WriteCSV(w io.Writer, plan model.ProductionPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "p"}); err != nil {
		return err
	}
	for _, e := range plan {
		if err := cw.Write([]string{e.Name, strconv.FormatFloat(e.P, 'f', 1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format.
func Write(w io.Writer, format string, plan model.ProductionPlan) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return WriteJSON(w, plan)
	case FormatCSV:
		return WriteCSV(w, plan)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteResponseFile replaces path with the indented plan. The file is written
// next to its destination first, so readers never see a partial plan.
func WriteResponseFile(path string, plan model.ProductionPlan) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = WriteIndentedJSON(tmp, plan); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func nonNil(plan model.ProductionPlan) model.ProductionPlan {
	if plan == nil {
		return model.ProductionPlan{}
	}
	return plan
}
