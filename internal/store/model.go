// Package store owns the multi-tenant store registry: the aggregate model,
// the repository contract, and the registry service the rest of the
// platform reads tenant state through.
package store

// SubscriptionStatus gates public storefront availability.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// DomainStatus tracks custom-domain provisioning.
type DomainStatus string

const (
	DomainPending DomainStatus = "pending"
	DomainActive  DomainStatus = "active"
	DomainError   DomainStatus = "error"
)

// OrderStatus is the fulfilment state of a placed order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// StoreProfile is one tenant's identity and branding. ID and UserID are set
// at creation and never change; StoreSlug is fixed at creation as well.
type StoreProfile struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Tagline            string             `json:"tagline"`
	BrandColor         string             `json:"brandColor"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	PlanName           string             `json:"planName"`
	ExpiryDate         int64              `json:"expiryDate"` // epoch millis
	OwnerEmail         string             `json:"ownerEmail"`
	UserID             string             `json:"userId"`
	StoreSlug          string             `json:"storeSlug"`
	Phone              string             `json:"phone,omitempty"`
	HeroImage          string             `json:"heroImage,omitempty"`
	AboutContent       string             `json:"aboutContent,omitempty"`
	CustomDomain       string             `json:"customDomain,omitempty"`
	DomainStatus       DomainStatus       `json:"domainStatus,omitempty"`
}

// Product is a simple catalog entry. Prices are whole Rupees.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// CartItem is a product plus a quantity of at least 1. It lives only inside
// carts and order snapshots, never on the store aggregate itself.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Customer is the checkout contact block, captured once per order.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order is an immutable snapshot of a checkout. Only Status changes after
// placement.
type Order struct {
	ID        string      `json:"id"`
	Items     []CartItem  `json:"items"`
	Customer  Customer    `json:"customer"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt int64       `json:"createdAt"` // epoch millis
}

// MerchantStore is the aggregate root and the unit of persistence and of
// realtime subscription. Products and Orders are both kept newest-first.
type MerchantStore struct {
	Profile  StoreProfile `json:"profile"`
	Products []Product    `json:"products"`
	Orders   []Order      `json:"orders"`
}

// Clone returns a deep copy so subscribers and callers can never mutate
// registry state through a shared slice.
func (m MerchantStore) Clone() MerchantStore {
	out := m
	out.Products = make([]Product, len(m.Products))
	copy(out.Products, m.Products)
	out.Orders = make([]Order, len(m.Orders))
	for i, o := range m.Orders {
		items := make([]CartItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
		out.Orders[i] = o
	}
	return out
}
