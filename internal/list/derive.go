package list

import "github.com/dukerupert/shoplist/internal/model"

// UncheckedByCategory groups unchecked items by category, in the order of
// categories. Empty groups are left out, as are items whose category is not
// in categories. A category listed twice yields one group at its first
// position.
func UncheckedByCategory(items []model.Item, categories []string) []model.Section {
	grouped := make(map[string][]model.Item)
	for _, it := range items {
		if it.Checked {
			continue
		}
		grouped[it.Category] = append(grouped[it.Category], it)
	}

	sections := make([]model.Section, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		if data := grouped[cat]; len(data) > 0 {
			sections = append(sections, model.Section{Title: cat, Data: data})
		}
	}
	return sections
}

// CheckedItems returns the items in the cart, in collection order.
func CheckedItems(items []model.Item) []model.Item {
	checked := make([]model.Item, 0)
	for _, it := range items {
		if it.Checked {
			checked = append(checked, it)
		}
	}
	return checked
}

// TotalPrice sums price*quantity over every item; unpriced items count as 0.
func TotalPrice(items []model.Item) float64 {
	var total float64
	for _, it := range items {
		total += lineTotal(it)
	}
	return total
}

func CheckedTotalPrice(items []model.Item) float64 {
	var total float64
	for _, it := range items {
		if it.Checked {
			total += lineTotal(it)
		}
	}
	return total
}

// CheckedCount counts cart stops: a weighed item is one stop no matter its
// weight, a counted item contributes its quantity.
func CheckedCount(items []model.Item) float64 {
	var count float64
	for _, it := range items {
		if !it.Checked {
			continue
		}
		if it.Unit == model.UnitWeight {
			count++
		} else {
			count += it.Quantity
		}
	}
	return count
}

func lineTotal(it model.Item) float64 {
	if it.Price == nil {
		return 0
	}
	return *it.Price * it.Quantity
}

// Views bundles every derived view of one list.
type Views struct {
	UncheckedByCategory []model.Section `json:"uncheckedByCategory"`
	CheckedItems        []model.Item    `json:"checkedItems"`
	TotalPrice          float64         `json:"totalPrice"`
	CheckedTotalPrice   float64         `json:"checkedItemsTotalPrice"`
	CheckedCount        float64         `json:"checkedItemsCount"`
}

func ComputeViews(items []model.Item, categories []string) Views {
	return Views{
		UncheckedByCategory: UncheckedByCategory(items, categories),
		CheckedItems:        CheckedItems(items),
		TotalPrice:          TotalPrice(items),
		CheckedTotalPrice:   CheckedTotalPrice(items),
		CheckedCount:        CheckedCount(items),
	}
}

// ViewCache memoizes Views per list type by the identity of the input
// slices. It relies on collections never being modified in place, which
// holds for everything produced by this package. Not safe for concurrent use.
type ViewCache struct {
	entries map[model.ListType]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	items      []model.Item
	categories []string
	views      Views
}

func NewViewCache() *ViewCache {
	return &ViewCache{entries: make(map[model.ListType]cacheEntry)}
}

func (c *ViewCache) Get(lt model.ListType, items []model.Item, categories []string) Views {
	if e, ok := c.entries[lt]; ok && sameSlice(e.items, items) && sameSlice(e.categories, categories) {
		c.hits++
		return e.views
	}
	c.misses++
	v := ComputeViews(items, categories)
	c.entries[lt] = cacheEntry{items: items, categories: categories, views: v}
	return v
}

// Stats returns cache hits and misses since creation.
func (c *ViewCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
