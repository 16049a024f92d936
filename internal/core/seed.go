package core

import (
	"time"

	"nutriplan/internal/ingredient"
	"nutriplan/pkg/domain"
)

// sampleDailyLogs builds a two-day demo ledger ending on now's date.
func sampleDailyLogs(now time.Time, newID func() string) map[string]domain.DailyLog {
	today := now.Format(domain.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(domain.DateLayout)
	days := map[string][]domain.FoodEntry{
		yesterday: {
			{Name: "Greek Yogurt Parfait", Calories: 320, Protein: domain.Float(18), Carbs: domain.Float(42), Fat: domain.Float(8), Time: "08:15", MealType: domain.MealBreakfast},
			{Name: "Grilled Chicken Salad", Calories: 450, Protein: domain.Float(38), Carbs: domain.Float(18), Fat: domain.Float(24), Time: "12:40", MealType: domain.MealLunch},
			{Name: "Salmon with Quinoa", Calories: 610, Protein: domain.Float(42), Carbs: domain.Float(48), Fat: domain.Float(26), Time: "19:05", MealType: domain.MealDinner},
		},
		today: {
			{Name: "Oatmeal with Berries", Calories: 280, Protein: domain.Float(9), Carbs: domain.Float(51), Fat: domain.Float(5), Time: "07:50", MealType: domain.MealBreakfast},
			{Name: "Apple", Calories: 95, Carbs: domain.Float(25), Time: "10:30", MealType: domain.MealSnack},
		},
	}
	out := make(map[string]domain.DailyLog, len(days))
	for date, meals := range days {
		log := domain.DailyLog{Meals: make([]domain.FoodEntry, len(meals))}
		for i, e := range meals {
			e.ID = newID()
			log.Meals[i] = e
		}
		recomputeTotals(&log)
		out[date] = log
	}
	return out
}

var sampleGroceryNames = []string{
	"Spinach",
	"Greek Yogurt",
	"Chicken Breast",
	"Quinoa",
	"Blueberries",
	"Whole Wheat Bread",
}

func sampleGroceryItems(newID func() string) []domain.GroceryItem {
	items := make([]domain.GroceryItem, len(sampleGroceryNames))
	for i, name := range sampleGroceryNames {
		items[i] = domain.GroceryItem{ID: newID(), Name: name, Category: ingredient.Categorize(name)}
	}
	return items
}
