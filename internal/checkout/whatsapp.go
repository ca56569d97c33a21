package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/models"
)

// BuildHandoffMessage formats the order summary sent over the messaging
// channel: store name, customer, order id, itemized lines, and the total
// to two decimals.
func BuildHandoffMessage(siteName string, order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New Order from %s!\n", siteName)
	fmt.Fprintf(&b, "Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Order ID: %s\n", order.ID)
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s (Qty: %d)\n", item.Name, item.Quantity)
	}
	fmt.Fprintf(&b, "Total: $%.2f", order.Total)
	return b.String()
}

// HandoffLink builds the wa.me deep link. Non-digits are stripped from the
// configured number; an empty result falls back to the documented default.
func HandoffLink(number, fallback, message string) string {
	digits := keepDigits(number)
	if digits == "" {
		digits = keepDigits(fallback)
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, percentEncode(message))
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// percentEncode matches encodeURIComponent: spaces become %20, not +.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
