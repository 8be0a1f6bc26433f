package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/shoplist/internal/list"
	"github.com/dukerupert/shoplist/internal/model"
)

// SavePurchase records the active list in history and then empties it. The
// list is only cleared when the history write succeeds; the new history
// entry stays in memory after a failed write but is dropped when the
// history cannot be encoded at all.
func (s *Session) SavePurchase(ctx context.Context, storeName, paymentMethod string) (model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return model.Purchase{}, err
	}

	p := list.NewPurchase(s.state.Lists[s.active], storeName, paymentMethod, s.newID(), s.now())
	history := list.PrependPurchase(s.state.History, p)
	data, err := json.Marshal(history)
	if err != nil {
		s.logger.Error("encode purchase failed", "store", p.StoreName, "error", err)
		s.notify(NoticeError, "Purchase not saved", "The list totals are out of range. Your list was kept.")
		return model.Purchase{}, fmt.Errorf("save purchase: marshal %s: %w", KeyHistory, err)
	}

	s.state.History = history
	s.mutationLocked("save_purchase")
	s.publishLocked("purchase", "created", p.ID)

	if err := s.storeLocked(ctx, KeyHistory, data); err != nil {
		s.notify(NoticeError, "Purchase not saved", "The purchase could not be stored. Your list was kept.")
		return p, fmt.Errorf("save purchase: %w", err)
	}

	s.setItemsLocked([]model.Item{})
	s.publishLocked("list", "cleared", "")
	s.notify(NoticeInfo, "Purchase saved", fmt.Sprintf("%s, total %s", p.StoreName, list.FormatMoney(p.TotalPrice)))
	s.logger.Info("purchase saved", "id", p.ID, "items", len(p.Items), "total", p.TotalPrice)
	return p, nil
}

// SaveListAsTemplate stores the active list as a reusable template.
func (s *Session) SaveListAsTemplate(ctx context.Context, name string) (model.SavedList, error) {
	if strings.TrimSpace(name) == "" {
		return model.SavedList{}, list.ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return model.SavedList{}, err
	}

	t := list.NewTemplate(s.state.Lists[s.active], name, s.newID())
	s.state.Templates = list.PrependTemplate(s.state.Templates, t)
	s.mutationLocked("save_template")
	s.publishLocked("template", "created", t.ID)

	if err := s.writeLocked(ctx, KeyTemplates, s.state.Templates); err != nil {
		s.notify(NoticeError, "Template not saved", fmt.Sprintf("%q could not be stored.", t.Name))
		return t, fmt.Errorf("save template: %w", err)
	}
	s.notify(NoticeInfo, "Template saved", t.Name)
	return t, nil
}

// LoadListFromTemplate replaces the active list with fresh items built from
// the template. An unknown id is a no-op.
func (s *Session) LoadListFromTemplate(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return false, err
	}
	t, ok := list.FindTemplate(s.state.Templates, id)
	if !ok {
		return false, nil
	}
	s.setItemsLocked(list.InstantiateTemplate(t, s.newID))
	s.mutationLocked("load_template")
	s.publishLocked("list", "replaced", id)
	return true, nil
}

func (s *Session) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	return s.mutateTemplates(ctx, "delete_template", "deleted", id, func(ts []model.SavedList) ([]model.SavedList, bool) {
		return list.DeleteTemplate(ts, id)
	})
}

func (s *Session) UpdateTemplate(ctx context.Context, id, name string, items []model.Blueprint) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, list.ErrInvalidName
	}
	for _, bp := range items {
		if strings.TrimSpace(bp.Name) == "" {
			return false, list.ErrInvalidName
		}
		if err := list.CheckQuantity(bp.Quantity); err != nil {
			return false, err
		}
	}
	return s.mutateTemplates(ctx, "update_template", "updated", id, func(ts []model.SavedList) ([]model.SavedList, bool) {
		return list.UpdateTemplate(ts, id, name, items)
	})
}

func (s *Session) mutateTemplates(ctx context.Context, op, action, id string, fn func([]model.SavedList) ([]model.SavedList, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return false, err
	}
	templates, changed := fn(s.state.Templates)
	if !changed {
		return false, nil
	}
	s.state.Templates = templates
	s.mutationLocked(op)
	s.publishLocked("template", action, id)
	if err := s.writeLocked(ctx, KeyTemplates, templates); err != nil {
		return true, fmt.Errorf("%s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	return true, nil
}

// UpdateCategories replaces the ordered category set of the active list.
func (s *Session) UpdateCategories(ctx context.Context, categories []string) error {
	_, err := s.mutateCategories(ctx, "update_categories", func(cats []string) ([]string, bool, error) {
		return list.ReplaceCategories(categories), true, nil
	})
	return err
}

func (s *Session) AddCategory(ctx context.Context, name string) error {
	_, err := s.mutateCategories(ctx, "add_category", func(cats []string) ([]string, bool, error) {
		out, err := list.AddCategory(cats, name)
		return out, err == nil, err
	})
	return err
}

// RemoveCategory drops a category. Items filed under it keep their tag.
func (s *Session) RemoveCategory(ctx context.Context, name string) (bool, error) {
	return s.mutateCategories(ctx, "remove_category", func(cats []string) ([]string, bool, error) {
		out, ok := list.RemoveCategory(cats, name)
		return out, ok, nil
	})
}

func (s *Session) MoveCategory(ctx context.Context, from, to int) (bool, error) {
	return s.mutateCategories(ctx, "move_category", func(cats []string) ([]string, bool, error) {
		out, ok := list.MoveCategory(cats, from, to)
		return out, ok, nil
	})
}

func (s *Session) mutateCategories(ctx context.Context, op string, fn func([]string) ([]string, bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return false, err
	}
	cats, changed, err := fn(s.state.Categories[s.active])
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	s.state = list.WithCategories(s.state, s.active, cats)
	s.mutationLocked(op)
	s.publishLocked("category", "updated", "")
	if err := s.writeLocked(ctx, KeyCategories, s.state.Categories); err != nil {
		return true, fmt.Errorf("%s: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	return true, nil
}

// ExportList serializes the active list for sharing.
func (s *Session) ExportList() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list.ExportItems(s.state.Lists[s.active])
}

// ImportList replaces the active list with the items encoded in text. On
// any error the list is left as it was and the error wraps
// list.ErrInvalidListCode.
func (s *Session) ImportList(text string) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	items, err := list.ImportItems(text, s.newID)
	if err != nil {
		if errors.Is(err, list.ErrInvalidListCode) {
			s.notify(NoticeError, "Invalid list code", "The text you pasted is not a valid list.")
		}
		s.logger.Warn("import rejected", "error", err)
		return nil, err
	}
	s.setItemsLocked(items)
	s.mutationLocked("import_list")
	s.publishLocked("list", "replaced", "")
	s.notify(NoticeInfo, "List imported", fmt.Sprintf("%d items", len(items)))
	return items, nil
}
