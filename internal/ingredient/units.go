package ingredient

import "strings"

// unitAliases maps every recognised unit spelling (lower case) to its
// canonical singular form.
var unitAliases = map[string]string{
	"teaspoon": "tsp", "teaspoons": "tsp", "tsp": "tsp", "tsps": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbsp": "tbsp", "tbsps": "tbsp", "tbs": "tbsp",
	"cup": "cup", "cups": "cup",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"g": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"pinch": "pinch", "pinches": "pinch",
	"clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
	"can": "can", "cans": "can",
}

// IsUnit reports whether tok is a recognised unit, ignoring case and a
// trailing abbreviation period.
func IsUnit(tok string) bool {
	_, ok := unitAliases[unitKey(tok)]
	return ok
}

// CanonicalUnit returns the canonical spelling of a unit ("cups" -> "cup").
// Unrecognised input is returned lower-cased.
func CanonicalUnit(unit string) string {
	k := unitKey(unit)
	if c, ok := unitAliases[k]; ok {
		return c
	}
	return k
}

func unitKey(tok string) string {
	return strings.ToLower(strings.TrimSuffix(tok, "."))
}
