package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nutriplan/internal/core"
	"nutriplan/pkg/domain"
)

type logsExport struct {
	ExportedAt string          `json:"exported_at"`
	Count      int             `json:"count"`
	Totals     summary         `json:"totals"`
	Days       []core.DatedLog `json:"days"`
}

type summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type groceryExport struct {
	ExportedAt string               `json:"exported_at"`
	Count      int                  `json:"count"`
	Items      []domain.GroceryItem `json:"items"`
}

// LogsToJSON writes an indented document with the range totals and every day.
func LogsToJSON(w io.Writer, logs []core.DatedLog, now time.Time) error {
	out := logsExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(logs),
		Days:       logs,
	}
	if out.Days == nil {
		out.Days = []core.DatedLog{}
	}
	for _, d := range logs {
		out.Totals.Calories += d.Log.TotalCalories
		out.Totals.Protein += d.Log.TotalProtein
		out.Totals.Carbs += d.Log.TotalCarbs
		out.Totals.Fat += d.Log.TotalFat
	}
	return writeJSON(w, out)
}

// GroceryToJSON writes the list as an indented document.
func GroceryToJSON(w io.Writer, items []domain.GroceryItem, now time.Time) error {
	out := groceryExport{ExportedAt: now.UTC().Format(time.RFC3339), Count: len(items), Items: items}
	if out.Items == nil {
		out.Items = []domain.GroceryItem{}
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
