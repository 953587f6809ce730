package order_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart/storefront-platform/internal/order"
	"github.com/swiftcart/storefront-platform/internal/store"
)

func TestHandoffLink(t *testing.T) {
	link := order.HandoffLink("+92 300-1234567", "hello world")
	assert.Equal(t, "https://wa.me/923001234567?text=hello+world", link)
}

func TestSummary(t *testing.T) {
	profile := store.StoreProfile{ID: "s1", Name: "Acme Store"}
	ord := store.Order{
		ID: "SWIFT-ABC",
		Items: []store.CartItem{
			{Product: store.Product{ID: "p1", Name: "Mug", Price: 500}, Quantity: 2},
		},
		Customer: store.Customer{Name: "Ayesha Khan", Phone: "+923001234567", Address: "Karachi"},
		Total:    1200,
	}

	text := order.Summary(profile, ord)
	assert.Contains(t, text, "SWIFT-ABC")
	assert.Contains(t, text, "Acme Store")
	assert.Contains(t, text, "Mug x2 = Rs. 1000")
	assert.Contains(t, text, "Rs. 1200")
	assert.Contains(t, text, "Cash on Delivery")
}

func TestWhatsAppNotifier(t *testing.T) {
	var opened []string
	n := &order.WhatsAppNotifier{Open: func(link string) { opened = append(opened, link) }}

	ord := store.Order{ID: "SWIFT-ABC", Total: 700}

	// no merchant phone: handoff silently skipped
	n.OrderPlaced(store.StoreProfile{ID: "s1", Name: "Acme"}, ord)
	assert.Empty(t, opened)

	n.OrderPlaced(store.StoreProfile{ID: "s1", Name: "Acme", Phone: "+923001234567"}, ord)
	require.Len(t, opened, 1)
	assert.True(t, strings.HasPrefix(opened[0], "https://wa.me/923001234567?text="))
}
