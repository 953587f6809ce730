package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/store"
)

// WhatsAppNotifier builds a pre-filled WhatsApp deep link for the merchant
// so a human can confirm the COD order. Handing the link off is
// fire-and-forget; a merchant without a phone number simply gets nothing.
type WhatsAppNotifier struct {
	// Open receives the built deep link. In the app this surfaces the link
	// to the client; tests capture it.
	Open func(link string)
}

// OrderPlaced implements Notifier.
func (n *WhatsAppNotifier) OrderPlaced(profile store.StoreProfile, ord store.Order) {
	if profile.Phone == "" {
		log.Debug().Str("store_id", profile.ID).Msg("order: no merchant phone, skipping WhatsApp handoff")
		return
	}
	link := HandoffLink(profile.Phone, Summary(profile, ord))
	if n.Open != nil {
		n.Open(link)
	}
}

// Summary renders the human-readable order summary used for the handoff
// message.
func Summary(profile store.StoreProfile, ord store.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s at %s\n", ord.ID, profile.Name)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", ord.Customer.Name, ord.Customer.Phone)
	fmt.Fprintf(&b, "Deliver to: %s\n\n", ord.Customer.Address)
	for _, item := range ord.Items {
		fmt.Fprintf(&b, "- %s x%d = Rs. %d\n", item.Name, item.Quantity, item.Price*int64(item.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal (incl. shipping): Rs. %d\nPayment: Cash on Delivery", ord.Total)
	return b.String()
}

// HandoffLink builds the wa.me deep link with the summary pre-filled.
func HandoffLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}
