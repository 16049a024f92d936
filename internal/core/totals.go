package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"nutriplan/pkg/domain"
)

// recomputeTotals rebuilds the aggregates of log from its entries using exact
// decimal addition, so totals depend only on the current entries and never
// accumulate float drift across add/remove/update sequences.
func recomputeTotals(log *domain.DailyLog) {
	var cal, protein, carbs, fat decimal.Decimal
	for _, e := range log.Meals {
		cal = cal.Add(decimal.NewFromFloat(e.Calories))
		protein = protein.Add(decimal.NewFromFloat(e.ProteinOrZero()))
		carbs = carbs.Add(decimal.NewFromFloat(e.CarbsOrZero()))
		fat = fat.Add(decimal.NewFromFloat(e.FatOrZero()))
	}
	log.TotalCalories = cal.InexactFloat64()
	log.TotalProtein = protein.InexactFloat64()
	log.TotalCarbs = carbs.InexactFloat64()
	log.TotalFat = fat.InexactFloat64()
}

// validateEntry rejects entries the ledger cannot aggregate.
func validateEntry(e domain.FoodEntry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidEntry)
	}
	if !e.MealType.Valid() {
		return fmt.Errorf("%w: unknown meal type %q", domain.ErrInvalidEntry, e.MealType)
	}
	fields := []struct {
		name string
		v    *float64
	}{{"calories", &e.Calories}, {"protein", e.Protein}, {"carbs", e.Carbs}, {"fat", e.Fat}}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidEntry, f.name)
		}
	}
	return nil
}

func validateDate(date string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}
	return nil
}
