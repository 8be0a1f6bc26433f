package model

import (
	"fmt"
	"time"
)

// ListType selects one of the independent shopping lists. Each type owns its
// own item collection and category set.
type ListType string

const (
	ListGrocery     ListType = "grocery"
	ListPharmacy    ListType = "pharmacy"
	ListConvenience ListType = "convenience"
)

// ListTypes returns every list type in display order.
func ListTypes() []ListType {
	return []ListType{ListGrocery, ListPharmacy, ListConvenience}
}

func ParseListType(s string) (ListType, error) {
	switch lt := ListType(s); lt {
	case ListGrocery, ListPharmacy, ListConvenience:
		return lt, nil
	}
	return "", fmt.Errorf("unknown list type %q", s)
}

type Unit string

const (
	UnitCount  Unit = "un"
	UnitWeight Unit = "kg"
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case UnitCount, UnitWeight:
		return u, nil
	case "":
		return UnitCount, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     Unit     `json:"unit"`
	Price    *float64 `json:"price,omitempty"`
	Checked  bool     `json:"checked"`
	Category string   `json:"category"`
}

// ItemDraft is an Item before it has an identity or a checked state.
type ItemDraft struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     Unit     `json:"unit"`
	Price    *float64 `json:"price,omitempty"`
	Category string   `json:"category"`
}

// Blueprint is the reusable shape of an item stored in a template.
type Blueprint struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
	Category string  `json:"category"`
}

type Purchase struct {
	ID            string    `json:"id"`
	StoreName     string    `json:"storeName"`
	Date          string    `json:"date"`
	TotalPrice    float64   `json:"totalPrice"`
	Items         []Item    `json:"items"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SavedList struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Items []Blueprint `json:"items"`
}

// Section is one category group of the unchecked-items view.
type Section struct {
	Title string `json:"title"`
	Data  []Item `json:"data"`
}
