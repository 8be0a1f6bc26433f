package grocery

import "testing"

var groceryCategories = []string{
	"Produce", "Bakery", "Meat & Deli", "Dairy", "Pantry",
	"Beverages", "Cleaning", "Personal Care", "Other",
}

func TestSuggestExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Deli"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"water", "Beverages"},
		{"detergent", "Cleaning"},
		{"shampoo", "Personal Care"},
		{"apple", "Produce"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input, groceryCategories)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chicken breast", "Meat & Deli"},
		{"whole wheat bread", "Bakery"},
		{"canned black beans", "Pantry"},
		{"sparkling water bottles", "Beverages"},
		{"greek yogurt cups", "Dairy"},
		{"vanilla ice cream", "Pantry"},
		{"paper towels", "Cleaning"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input, groceryCategories)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestUsesListCategories(t *testing.T) {
	convenience := []string{"Beverages", "Snacks", "Sweets", "Personal Care", "Other"}
	pharmacy := []string{"Medicine"}

	tests := []struct {
		input      string
		categories []string
		want       string
	}{
		{"chocolate bar", convenience, "Sweets"},
		{"chocolate bar", groceryCategories, "Pantry"},
		{"ice cream", convenience, "Sweets"},
		{"toothpaste", pharmacy, "Medicine"},
		{"ibuprofen 400mg", pharmacy, "Medicine"},
		{"ibuprofen", groceryCategories, "Personal Care"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input, tt.categories)
		if got != tt.want {
			t.Errorf("Suggest(%q, %v) = %q, want %q", tt.input, tt.categories, got, tt.want)
		}
	}
}

func TestSuggestCaseInsensitive(t *testing.T) {
	if got := Suggest("  MILK ", groceryCategories); got != "Dairy" {
		t.Errorf("Suggest(%q) = %q, want %q", "  MILK ", got, "Dairy")
	}
}

func TestSuggestFallbacks(t *testing.T) {
	if got := Suggest("widget", groceryCategories); got != "Other" {
		t.Errorf("Suggest(widget) = %q, want %q", got, "Other")
	}
	if got := Suggest("", groceryCategories); got != "Other" {
		t.Errorf("Suggest(empty) = %q, want %q", got, "Other")
	}
	if got := Suggest("widget", []string{"Medicine"}); got != "Medicine" {
		t.Errorf("Suggest(widget, pharmacy) = %q, want %q", got, "Medicine")
	}
	if got := Suggest("milk", nil); got != "" {
		t.Errorf("Suggest(milk, nil) = %q, want empty", got)
	}
}
