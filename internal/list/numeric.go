package list

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/shoplist/internal/model"
)

// Upper bounds keep every line total, and any sum of them, finite.
const (
	MaxQuantity = 1e6
	MaxPrice    = 1e9
)

// ParseQuantity parses user input such as "1,5" or "2". Quantities must be
// greater than zero and at most MaxQuantity.
func ParseQuantity(s string) (float64, error) {
	v, err := parseDecimal(s)
	if err != nil || !validQuantity(v) {
		return 0, ErrInvalidQuantity
	}
	return v, nil
}

// ParsePrice parses a unit price between zero and MaxPrice.
func ParsePrice(s string) (float64, error) {
	v, err := parseDecimal(s)
	if err != nil || !validPrice(v) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// CheckDraft reports the first reason draft would be rejected by AddItem.
func CheckDraft(draft model.ItemDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return ErrInvalidName
	}
	if !validQuantity(draft.Quantity) {
		return ErrInvalidQuantity
	}
	if draft.Price != nil && !validPrice(*draft.Price) {
		return ErrInvalidPrice
	}
	return nil
}

func CheckQuantity(q float64) error {
	if !validQuantity(q) {
		return ErrInvalidQuantity
	}
	return nil
}

func CheckPrice(p float64) error {
	if !validPrice(p) {
		return ErrInvalidPrice
	}
	return nil
}

func validQuantity(q float64) bool {
	return q > 0 && q <= MaxQuantity
}

func validPrice(p float64) bool {
	return p >= 0 && p <= MaxPrice
}

// RoundMoney rounds to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(v float64) string {
	return humanize.FormatFloat("#,###.##", RoundMoney(v))
}
