package grocery

import (
	"strings"

	"github.com/dukerupert/shoplist/internal/list"
)

// rule maps a keyword to the categories it belongs to, most specific first.
// A list that lacks the first category falls through to the next one.
type rule struct {
	keyword    string
	categories []string
}

// Suggest picks a category for a new item from the given ordered category
// set. Whole-name matches win over substring matches. When nothing matches
// it returns "Other" if the set has it, then the first category, then "".
func Suggest(itemName string, categories []string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	available := make(map[string]bool, len(categories))
	for _, c := range categories {
		available[c] = true
	}

	if name != "" {
		for _, r := range rules {
			if name == r.keyword {
				if cat := firstAvailable(r.categories, available); cat != "" {
					return cat
				}
			}
		}
		for _, r := range rules {
			if strings.Contains(name, r.keyword) {
				if cat := firstAvailable(r.categories, available); cat != "" {
					return cat
				}
			}
		}
	}

	if list.HasCategory(categories, list.OtherCategory) {
		return list.OtherCategory
	}
	if len(categories) > 0 {
		return categories[0]
	}
	return ""
}

func firstAvailable(candidates []string, available map[string]bool) string {
	for _, c := range candidates {
		if available[c] {
			return c
		}
	}
	return ""
}

var (
	produce   = []string{"Produce"}
	bakery    = []string{"Bakery"}
	meat      = []string{"Meat & Deli"}
	dairy     = []string{"Dairy"}
	pantry    = []string{"Pantry"}
	beverages = []string{"Beverages"}
	cleaning  = []string{"Cleaning"}
	personal  = []string{"Personal Care", "Medicine"}
	medicine  = []string{"Medicine", "Personal Care"}
	sweets    = []string{"Sweets", "Snacks", "Pantry"}
	snacks    = []string{"Snacks", "Pantry"}
)

// Longer, more specific keywords come before the short ones they contain.
var rules = []rule{
	// Multi-word first so "ice cream" is not read as "cream"
	{"ice cream", sweets},
	{"peanut butter", pantry},
	{"olive oil", pantry},
	{"tomato sauce", pantry},
	{"cream cheese", dairy},
	{"sour cream", dairy},
	{"ground beef", meat},
	{"orange juice", beverages},
	{"sparkling water", beverages},
	{"toilet paper", cleaning},
	{"paper towel", cleaning},
	{"trash bag", cleaning},
	{"dish soap", cleaning},
	{"body wash", personal},
	{"cough syrup", medicine},
	{"nasal spray", medicine},

	{"apple", produce},
	{"banana", produce},
	{"orange", produce},
	{"lemon", produce},
	{"lime", produce},
	{"tomato", produce},
	{"potato", produce},
	{"onion", produce},
	{"garlic", produce},
	{"lettuce", produce},
	{"carrot", produce},
	{"grape", produce},
	{"strawberr", produce},
	{"avocado", produce},
	{"pepper", produce},
	{"spinach", produce},

	{"bread", bakery},
	{"baguette", bakery},
	{"bagel", bakery},
	{"croissant", bakery},
	{"muffin", bakery},
	{"roll", bakery},
	{"cake", bakery},

	{"chicken", meat},
	{"beef", meat},
	{"pork", meat},
	{"bacon", meat},
	{"sausage", meat},
	{"ham", meat},
	{"salami", meat},
	{"turkey", meat},
	{"steak", meat},
	{"fish", meat},
	{"salmon", meat},

	{"milk", dairy},
	{"cheese", dairy},
	{"butter", dairy},
	{"yogurt", dairy},
	{"cream", dairy},
	{"eggs", dairy},

	{"rice", pantry},
	{"beans", pantry},
	{"pasta", pantry},
	{"flour", pantry},
	{"sugar", pantry},
	{"salt", pantry},
	{"coffee", pantry},
	{"cereal", pantry},
	{"oil", pantry},
	{"sauce", pantry},
	{"canned", pantry},

	{"water", beverages},
	{"juice", beverages},
	{"soda", beverages},
	{"beer", beverages},
	{"wine", beverages},
	{"tea", beverages},

	{"chocolate", sweets},
	{"candy", sweets},
	{"gum", sweets},
	{"cookie", sweets},
	{"chips", snacks},
	{"popcorn", snacks},
	{"pretzel", snacks},
	{"peanuts", snacks},

	{"detergent", cleaning},
	{"bleach", cleaning},
	{"sponge", cleaning},
	{"soap", cleaning},
	{"cleaner", cleaning},

	{"shampoo", personal},
	{"conditioner", personal},
	{"toothpaste", personal},
	{"toothbrush", personal},
	{"deodorant", personal},
	{"sunscreen", personal},
	{"razor", personal},

	{"aspirin", medicine},
	{"ibuprofen", medicine},
	{"paracetamol", medicine},
	{"vitamin", medicine},
	{"antibiotic", medicine},
	{"bandage", medicine},
	{"pill", medicine},
}
