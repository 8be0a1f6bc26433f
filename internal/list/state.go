package list

import "github.com/dukerupert/shoplist/internal/model"

// State is a full snapshot of every list. Values are treated as immutable:
// the functions in this package return new slices and maps instead of
// modifying the ones they receive.
type State struct {
	Lists      map[model.ListType][]model.Item `json:"lists"`
	Categories map[model.ListType][]string     `json:"categories"`
	History    []model.Purchase                `json:"history"`
	Templates  []model.SavedList               `json:"templates"`
}

// SeedState is the state of a first run: empty lists, default categories,
// no history and no templates.
func SeedState() State {
	return State{
		Lists:      EmptyLists(),
		Categories: DefaultCategories(),
		History:    []model.Purchase{},
		Templates:  []model.SavedList{},
	}
}

func EmptyLists() map[model.ListType][]model.Item {
	lists := make(map[model.ListType][]model.Item, len(model.ListTypes()))
	for _, lt := range model.ListTypes() {
		lists[lt] = []model.Item{}
	}
	return lists
}

// WithItems returns a copy of s where only lt's collection is replaced.
func WithItems(s State, lt model.ListType, items []model.Item) State {
	lists := make(map[model.ListType][]model.Item, len(s.Lists)+1)
	for k, v := range s.Lists {
		lists[k] = v
	}
	lists[lt] = items
	s.Lists = lists
	return s
}

// WithCategories returns a copy of s where only lt's categories are replaced.
func WithCategories(s State, lt model.ListType, categories []string) State {
	cats := make(map[model.ListType][]string, len(s.Categories)+1)
	for k, v := range s.Categories {
		cats[k] = v
	}
	cats[lt] = categories
	s.Categories = cats
	return s
}

// Normalize fills in anything a decoded snapshot is missing so every list
// type has a non-nil collection and a category set.
func Normalize(s State) State {
	seed := SeedState()
	if s.Lists == nil {
		s.Lists = seed.Lists
	}
	if s.Categories == nil {
		s.Categories = seed.Categories
	}
	for _, lt := range model.ListTypes() {
		if s.Lists[lt] == nil {
			s = WithItems(s, lt, []model.Item{})
		}
		if _, ok := s.Categories[lt]; !ok {
			s = WithCategories(s, lt, seed.Categories[lt])
		}
	}
	if s.History == nil {
		s.History = []model.Purchase{}
	}
	if s.Templates == nil {
		s.Templates = []model.SavedList{}
	}
	return s
}

// ItemCount is the number of items across every list.
func (s State) ItemCount() int {
	n := 0
	for _, items := range s.Lists {
		n += len(items)
	}
	return n
}

func cloneItem(it model.Item) model.Item {
	if it.Price != nil {
		p := *it.Price
		it.Price = &p
	}
	return it
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}
