// Package domain defines the persisted entities and value types shared by the
// nutrition ledger and grocery list stores.
package domain

import "time"

// EntityType identifies the kind of record an operation touches. It is used
// for audit entries and metric labels.
type EntityType string

const (
	// EntityFoodEntry identifies a logged food entry.
	EntityFoodEntry EntityType = "food_entry"
	// EntityDailyLog identifies a per-date nutrition ledger.
	EntityDailyLog EntityType = "daily_log"
	// EntityGroceryItem identifies a grocery list item.
	EntityGroceryItem EntityType = "grocery_item"
)

// MealType tags a food entry with the meal it belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the meal types in the order a day is displayed.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// DateLayout is the calendar date format used for daily log keys.
const DateLayout = "2006-01-02"

// ParseDate validates a daily log key.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FoodEntry is a single logged food item. Protein, Carbs and Fat are optional;
// an absent value counts as zero for the daily totals.
type FoodEntry struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Calories float64  `json:"calories"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Time     string   `json:"time"`
	MealType MealType `json:"mealType"`
}

// ProteinOrZero returns the protein value or 0 when absent.
func (e FoodEntry) ProteinOrZero() float64 { return valueOrZero(e.Protein) }

// CarbsOrZero returns the carbohydrate value or 0 when absent.
func (e FoodEntry) CarbsOrZero() float64 { return valueOrZero(e.Carbs) }

// FatOrZero returns the fat value or 0 when absent.
func (e FoodEntry) FatOrZero() float64 { return valueOrZero(e.Fat) }

// Clone returns a copy that shares no pointers with e.
func (e FoodEntry) Clone() FoodEntry {
	cp := e
	cp.Protein = cloneFloat(e.Protein)
	cp.Carbs = cloneFloat(e.Carbs)
	cp.Fat = cloneFloat(e.Fat)
	return cp
}

// DailyLog is the nutrition ledger for one calendar date. The totals always
// equal the sum of the corresponding fields across Meals.
type DailyLog struct {
	TotalCalories float64     `json:"totalCalories"`
	TotalProtein  float64     `json:"totalProtein"`
	TotalCarbs    float64     `json:"totalCarbs"`
	TotalFat      float64     `json:"totalFat"`
	Meals         []FoodEntry `json:"meals"`
}

// Clone deep-copies the ledger.
func (l DailyLog) Clone() DailyLog {
	cp := l
	cp.Meals = make([]FoodEntry, len(l.Meals))
	for i, e := range l.Meals {
		cp.Meals[i] = e.Clone()
	}
	return cp
}

// GroceryItem is one purchasable entry on the shopping list.
type GroceryItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Checked  bool     `json:"checked"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// Clone returns a copy that shares no pointers with g.
func (g GroceryItem) Clone() GroceryItem {
	cp := g
	cp.Quantity = cloneFloat(g.Quantity)
	return cp
}

// Float returns a pointer to v, for populating optional nutrient fields.
func Float(v float64) *float64 { return &v }

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
