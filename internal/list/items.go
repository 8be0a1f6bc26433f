package list

import (
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

// Every function here returns a new slice and reports whether anything
// changed. A false result means the input slice is returned untouched.

// AddItem prepends a new unchecked item built from draft.
func AddItem(items []model.Item, draft model.ItemDraft, id string) ([]model.Item, bool) {
	name := strings.TrimSpace(draft.Name)
	if name == "" || !validQuantity(draft.Quantity) {
		return items, false
	}
	// ids must stay unique within a collection
	if id == "" || indexOf(items, id) >= 0 {
		return items, false
	}
	if draft.Price != nil && !validPrice(*draft.Price) {
		return items, false
	}
	unit := draft.Unit
	if unit == "" {
		unit = model.UnitCount
	}

	item := cloneItem(model.Item{
		ID:       id,
		Name:     name,
		Quantity: draft.Quantity,
		Unit:     unit,
		Price:    draft.Price,
		Category: draft.Category,
	})

	out := make([]model.Item, 0, len(items)+1)
	out = append(out, item)
	out = append(out, items...)
	return out, true
}

func ToggleChecked(items []model.Item, id string) ([]model.Item, bool) {
	return mapItem(items, id, func(it *model.Item) bool {
		it.Checked = !it.Checked
		return true
	})
}

// SetPrice assigns a unit price. Negative prices are rejected.
func SetPrice(items []model.Item, id string, price float64) ([]model.Item, bool) {
	if !validPrice(price) {
		return items, false
	}
	return mapItem(items, id, func(it *model.Item) bool {
		p := price
		it.Price = &p
		return true
	})
}

// UpdateItem replaces name, quantity and unit. Price, checked state and
// category are left alone.
func UpdateItem(items []model.Item, id, name string, quantity float64, unit model.Unit) ([]model.Item, bool) {
	name = strings.TrimSpace(name)
	if name == "" || !validQuantity(quantity) {
		return items, false
	}
	if unit == "" {
		unit = model.UnitCount
	}
	return mapItem(items, id, func(it *model.Item) bool {
		it.Name = name
		it.Quantity = quantity
		it.Unit = unit
		return true
	})
}

// SetCategory moves an item to another category.
func SetCategory(items []model.Item, id, category string) ([]model.Item, bool) {
	return mapItem(items, id, func(it *model.Item) bool {
		if it.Category == category {
			return false
		}
		it.Category = category
		return true
	})
}

func DeleteItem(items []model.Item, id string) ([]model.Item, bool) {
	idx := indexOf(items, id)
	if idx < 0 {
		return items, false
	}
	out := make([]model.Item, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out, true
}

// UncheckAll resets the cart without removing anything.
func UncheckAll(items []model.Item) ([]model.Item, bool) {
	changed := false
	out := make([]model.Item, len(items))
	for i, it := range items {
		if it.Checked {
			it.Checked = false
			changed = true
		}
		out[i] = it
	}
	if !changed {
		return items, false
	}
	return out, true
}

func FindItem(items []model.Item, id string) (model.Item, bool) {
	idx := indexOf(items, id)
	if idx < 0 {
		return model.Item{}, false
	}
	return cloneItem(items[idx]), true
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func mapItem(items []model.Item, id string, fn func(*model.Item) bool) ([]model.Item, bool) {
	idx := indexOf(items, id)
	if idx < 0 {
		return items, false
	}
	it := cloneItem(items[idx])
	if !fn(&it) {
		return items, false
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	out[idx] = it
	return out, true
}
