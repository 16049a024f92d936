// Package export writes daily logs and grocery lists as CSV or JSON, to a
// writer or into a blob store.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"nutriplan/internal/core"
	"nutriplan/pkg/domain"
)

// LogsToCSV writes one row per food entry, dates ascending as given.
func LogsToCSV(w io.Writer, logs []core.DatedLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Time", "Meal", "Name", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)"}); err != nil {
		return err
	}
	for _, d := range logs {
		for _, e := range d.Log.Meals {
			row := []string{
				d.Date,
				e.Time,
				string(e.MealType),
				e.Name,
				formatFloat(e.Calories),
				formatOptional(e.Protein),
				formatOptional(e.Carbs),
				formatOptional(e.Fat),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// GroceryToCSV writes the list in the order given.
func GroceryToCSV(w io.Writer, items []domain.GroceryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Name", "Quantity", "Unit", "Checked"}); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{it.Category, it.Name, formatOptional(it.Quantity), it.Unit, strconv.FormatBool(it.Checked)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
