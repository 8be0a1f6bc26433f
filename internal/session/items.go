package session

import (
	"fmt"
	"strings"

	"github.com/dukerupert/shoplist/internal/grocery"
	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
)

// AddItem prepends a new item to the active list. A draft without a
// category is filed under the best matching one of the active list.
func (s *Session) AddItem(draft model.ItemDraft) (model.Item, error) {
	if err := list.CheckDraft(draft); err != nil {
		return model.Item{}, err
	}
	if draft.Unit != "" {
		if _, err := model.ParseUnit(string(draft.Unit)); err != nil {
			return model.Item{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return model.Item{}, err
	}

	draft.Category = strings.TrimSpace(draft.Category)
	if draft.Category == "" {
		draft.Category = grocery.Suggest(draft.Name, s.state.Categories[s.active])
	}

	id := s.newID()
	items, ok := list.AddItem(s.state.Lists[s.active], draft, id)
	if !ok {
		return model.Item{}, fmt.Errorf("add item: id %q already in use", id)
	}
	s.setItemsLocked(items)
	s.mutationLocked("add_item")
	s.publishLocked("item", "created", id)
	return items[0], nil
}

func (s *Session) ToggleItemChecked(id string) (bool, error) {
	return s.mutateItems("toggle_item", "checked", id, func(items []model.Item) ([]model.Item, bool) {
		return list.ToggleChecked(items, id)
	})
}

func (s *Session) UpdateItemPrice(id string, price float64) (bool, error) {
	if err := list.CheckPrice(price); err != nil {
		return false, err
	}
	return s.mutateItems("update_price", "updated", id, func(items []model.Item) ([]model.Item, bool) {
		return list.SetPrice(items, id, price)
	})
}

// UpdateItem replaces name, quantity and unit of an item.
func (s *Session) UpdateItem(id, name string, quantity float64, unit model.Unit) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, list.ErrInvalidName
	}
	if err := list.CheckQuantity(quantity); err != nil {
		return false, err
	}
	if _, err := model.ParseUnit(string(unit)); err != nil {
		return false, err
	}
	return s.mutateItems("update_item", "updated", id, func(items []model.Item) ([]model.Item, bool) {
		return list.UpdateItem(items, id, name, quantity, unit)
	})
}

// SetItemCategory re-files an item, for example after its category was
// removed.
func (s *Session) SetItemCategory(id, category string) (bool, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return false, list.ErrInvalidCategory
	}
	return s.mutateItems("set_category", "updated", id, func(items []model.Item) ([]model.Item, bool) {
		return list.SetCategory(items, id, category)
	})
}

func (s *Session) DeleteItem(id string) (bool, error) {
	return s.mutateItems("delete_item", "deleted", id, func(items []model.Item) ([]model.Item, bool) {
		return list.DeleteItem(items, id)
	})
}

func (s *Session) UncheckAllItems() (bool, error) {
	return s.mutateList("uncheck_all", "unchecked", list.UncheckAll)
}

// ClearActiveList empties the active list once confirm agrees. A nil
// confirm means the caller already asked. It reports whether the list was
// cleared.
func (s *Session) ClearActiveList(confirm ConfirmFunc) (bool, error) {
	if err := s.checkReady(); err != nil {
		return false, err
	}
	if confirm != nil {
		lt := s.ActiveListType()
		if !confirm("Clear list", fmt.Sprintf("Remove every item from the %s list?", lt)) {
			return false, nil
		}
	}
	return s.mutateList("clear_list", "cleared", func(items []model.Item) ([]model.Item, bool) {
		return []model.Item{}, len(items) > 0
	})
}

func (s *Session) checkReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) mutateItems(op, action, id string, fn func([]model.Item) ([]model.Item, bool)) (bool, error) {
	return s.mutate(op, "item", action, id, fn)
}

func (s *Session) mutateList(op, action string, fn func([]model.Item) ([]model.Item, bool)) (bool, error) {
	return s.mutate(op, "list", action, "", fn)
}

// mutate applies fn to the active collection and queues the write when
// anything changed.
func (s *Session) mutate(op, entity, action, id string, fn func([]model.Item) ([]model.Item, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return false, err
	}
	items, changed := fn(s.state.Lists[s.active])
	if !changed {
		return false, nil
	}
	s.setItemsLocked(items)
	s.mutationLocked(op)
	s.publishLocked(entity, action, id)
	return true, nil
}
