package list

import (
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

// OtherCategory is the catch-all category present in most default sets.
const OtherCategory = "Other"

// DefaultCategories returns a fresh copy of the first-run category sets.
func DefaultCategories() map[model.ListType][]string {
	return map[model.ListType][]string{
		model.ListGrocery: {
			"Produce", "Bakery", "Meat & Deli", "Dairy", "Pantry",
			"Beverages", "Cleaning", "Personal Care", OtherCategory,
		},
		model.ListPharmacy: {"Medicine"},
		model.ListConvenience: {
			"Beverages", "Snacks", "Sweets", "Personal Care", OtherCategory,
		},
	}
}

// ReplaceCategories returns a copy of the given ordered list with names
// trimmed and blanks dropped. Duplicates are kept; grouping treats them as
// one category.
func ReplaceCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// AddCategory appends name to the end of categories.
func AddCategory(categories []string, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return categories, ErrInvalidCategory
	}
	for _, c := range categories {
		if c == name {
			return categories, ErrDuplicateCategory
		}
	}
	out := make([]string, 0, len(categories)+1)
	out = append(out, categories...)
	return append(out, name), nil
}

// RemoveCategory drops every occurrence of name. Items tagged with it are
// not touched; they disappear from the grouped view until the category
// comes back.
func RemoveCategory(categories []string, name string) ([]string, bool) {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != name {
			out = append(out, c)
		}
	}
	if len(out) == len(categories) {
		return categories, false
	}
	return out, true
}

// MoveCategory moves the category at index from to index to.
func MoveCategory(categories []string, from, to int) ([]string, bool) {
	n := len(categories)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return categories, false
	}
	out := make([]string, 0, n)
	moved := categories[from]
	for i, c := range categories {
		if i != from {
			out = append(out, c)
		}
	}
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out, true
}

// HasCategory reports whether name is one of categories.
func HasCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}
