package list

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

const (
	DefaultStoreName     = "Unnamed store"
	DefaultPaymentMethod = "Not informed"

	// PurchaseDateLayout is the day/month/year layout of Purchase.Date.
	PurchaseDateLayout = "02/01/2006"
)

// NewPurchase freezes items into a purchase record. The items are deep
// copied so later edits to the live list never reach history.
func NewPurchase(items []model.Item, storeName, paymentMethod, id string, now time.Time) model.Purchase {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" {
		storeName = DefaultStoreName
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	return model.Purchase{
		ID:            id,
		StoreName:     storeName,
		Date:          now.Format(PurchaseDateLayout),
		TotalPrice:    RoundMoney(TotalPrice(items)),
		Items:         cloneItems(items),
		PaymentMethod: paymentMethod,
		CreatedAt:     now.UTC(),
	}
}

// PrependPurchase puts p at the front of history, most recent first.
func PrependPurchase(history []model.Purchase, p model.Purchase) []model.Purchase {
	out := make([]model.Purchase, 0, len(history)+1)
	out = append(out, p)
	return append(out, history...)
}

func FindPurchase(history []model.Purchase, id string) (model.Purchase, bool) {
	for _, p := range history {
		if p.ID == id {
			p.Items = cloneItems(p.Items)
			return p, true
		}
	}
	return model.Purchase{}, false
}

// Receipt renders a purchase as plain text, one line per item followed by
// the total.
func Receipt(p model.Purchase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", p.StoreName, p.Date)
	fmt.Fprintf(&b, "Payment: %s\n\n", p.PaymentMethod)
	for _, it := range p.Items {
		var price float64
		if it.Price != nil {
			price = *it.Price
		}
		fmt.Fprintf(&b, "%s\n  %s %s x %s = %s\n",
			it.Name, formatQuantity(it.Quantity), it.Unit, FormatMoney(price), FormatMoney(lineTotal(it)))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", FormatMoney(p.TotalPrice))
	return b.String()
}

func formatQuantity(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", q), "0"), ".")
}
