package ingredient

import "strings"

// Grocery categories assigned by Categorize.
const (
	CategoryProduce = "Produce"
	CategoryDairy   = "Dairy"
	CategoryMeat    = "Meat & Seafood"
	CategoryBakery  = "Bakery"
	CategoryPantry  = "Pantry"
	CategorySpices  = "Spices"
	CategoryFrozen  = "Frozen"
	CategoryOther   = "Other"
)

// categoryKeywords lists whole words and phrases per category. The longest
// matching keyword decides, except that any Frozen keyword wins outright.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{CategoryFrozen, []string{"frozen", "ice cream"}},
	{CategorySpices, []string{"salt", "pepper", "black pepper", "cumin", "paprika", "cinnamon", "oregano", "basil", "thyme", "rosemary", "nutmeg", "turmeric", "chili powder", "garlic powder", "onion powder", "vanilla", "bay leaf", "bay leaves"}},
	{CategoryDairy, []string{"milk", "butter", "cheese", "yogurt", "yoghurt", "cream", "sour cream", "egg", "eggs", "parmesan", "mozzarella"}},
	{CategoryMeat, []string{"chicken", "beef", "pork", "bacon", "turkey", "lamb", "sausage", "ham", "salmon", "tuna", "shrimp", "fish", "cod"}},
	{CategoryBakery, []string{"bread", "bun", "buns", "bagel", "tortilla", "tortillas", "pita", "croissant"}},
	{CategoryProduce, []string{"apple", "apples", "banana", "bananas", "lemon", "lime", "onion", "onions", "garlic", "tomato", "tomatoes", "potato", "potatoes", "carrot", "carrots", "lettuce", "spinach", "bell pepper", "bell peppers", "cucumber", "avocado", "broccoli", "celery", "ginger", "parsley", "cilantro", "mushroom", "mushrooms", "berries", "strawberries", "zucchini"}},
	{CategoryPantry, []string{"flour", "sugar", "rice", "pasta", "oil", "olive oil", "vinegar", "beans", "oats", "honey", "stock", "broth", "chicken stock", "chicken broth", "beef broth", "peanut butter", "sauce", "baking powder", "baking soda", "yeast", "lentils", "noodles", "cornstarch"}},
}

// Categorize files an ingredient name under a grocery category by keyword.
// Matching is case-insensitive on whole words or phrases.
func Categorize(name string) string {
	padded := " " + strings.Join(strings.FieldsFunc(strings.ToLower(name), isSeparator), " ") + " "
	best, bestLen := CategoryOther, 0
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if !strings.Contains(padded, " "+w+" ") {
				continue
			}
			if c.category == CategoryFrozen {
				return CategoryFrozen
			}
			if len(w) > bestLen {
				best, bestLen = c.category, len(w)
			}
		}
	}
	return best
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', ',', '(', ')', '-', '/':
		return true
	}
	return false
}
