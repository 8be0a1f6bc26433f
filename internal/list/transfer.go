package list

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/shoplist/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// importedItem is the wire shape accepted by ImportItems. id and checked are
// read but always replaced.
type importedItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" validate:"required"`
	Quantity float64  `json:"quantity" validate:"gt=0,lte=1000000"`
	Unit     string   `json:"unit" validate:"oneof=un kg"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0,lte=1000000000"`
	Checked  bool     `json:"checked"`
	Category string   `json:"category"`
}

// ExportItems serializes a collection as an indented JSON array.
func ExportItems(items []model.Item) (string, error) {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export items: %w", err)
	}
	return string(data), nil
}

// ImportItems parses text produced by ExportItems, or written by hand. The
// result replaces a whole collection, so an empty array is rejected. Every
// error wraps ErrInvalidListCode.
func ImportItems(text string, newID func() string) ([]model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidListCode)
	}

	var raw []importedItem
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListCode, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidListCode)
	}

	items := make([]model.Item, 0, len(raw))
	for i, r := range raw {
		r.Name = strings.TrimSpace(r.Name)
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidListCode, i, err)
		}
		items = append(items, cloneItem(model.Item{
			ID:       newID(),
			Name:     r.Name,
			Quantity: r.Quantity,
			Unit:     model.Unit(r.Unit),
			Price:    r.Price,
			Category: r.Category,
		}))
	}
	return items, nil
}
