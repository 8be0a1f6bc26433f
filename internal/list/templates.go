package list

import (
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

// Blueprints strips identity, price and checked state from items.
func Blueprints(items []model.Item) []model.Blueprint {
	out := make([]model.Blueprint, len(items))
	for i, it := range items {
		out[i] = model.Blueprint{
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Category: it.Category,
		}
	}
	return out
}

func NewTemplate(items []model.Item, name, id string) model.SavedList {
	return model.SavedList{
		ID:    id,
		Name:  strings.TrimSpace(name),
		Items: Blueprints(items),
	}
}

func PrependTemplate(templates []model.SavedList, t model.SavedList) []model.SavedList {
	out := make([]model.SavedList, 0, len(templates)+1)
	out = append(out, t)
	return append(out, templates...)
}

func FindTemplate(templates []model.SavedList, id string) (model.SavedList, bool) {
	for _, t := range templates {
		if t.ID == id {
			t.Items = append([]model.Blueprint(nil), t.Items...)
			return t, true
		}
	}
	return model.SavedList{}, false
}

// InstantiateTemplate builds a fresh collection from t: new ids from newID,
// no prices, nothing checked.
func InstantiateTemplate(t model.SavedList, newID func() string) []model.Item {
	items := make([]model.Item, len(t.Items))
	for i, bp := range t.Items {
		items[i] = model.Item{
			ID:       newID(),
			Name:     bp.Name,
			Quantity: bp.Quantity,
			Unit:     bp.Unit,
			Category: bp.Category,
		}
	}
	return items
}

func DeleteTemplate(templates []model.SavedList, id string) ([]model.SavedList, bool) {
	out := make([]model.SavedList, 0, len(templates))
	for _, t := range templates {
		if t.ID != id {
			out = append(out, t)
		}
	}
	if len(out) == len(templates) {
		return templates, false
	}
	return out, true
}

// UpdateTemplate renames a template and replaces its blueprints in place.
func UpdateTemplate(templates []model.SavedList, id, name string, items []model.Blueprint) ([]model.SavedList, bool) {
	for i, t := range templates {
		if t.ID != id {
			continue
		}
		out := make([]model.SavedList, len(templates))
		copy(out, templates)
		out[i] = model.SavedList{
			ID:    id,
			Name:  strings.TrimSpace(name),
			Items: append([]model.Blueprint{}, items...),
		}
		return out, true
	}
	return templates, false
}
