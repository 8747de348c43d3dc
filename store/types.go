// Package store holds the demo shapes the shape-synth CLI generates.
package store

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"shape-synth/engine"
	"shape-synth/primitive"
)

// 1. Product is an item for sale. Prices are in cents.
type Product struct {
	ID          int64      `json:"id"`
	SKU         SKU        `json:"sku"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Price       Money      `json:"price"`
	Inventory   uint16     `json:"inventory_count"`
	Tags        TagSet     `json:"tags"`
	Attributes  Attributes `json:"attributes"`
	Category    *Category  `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
}

// 2. Customer places orders.
type Customer struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Address  *string `json:"address"`
	IsActive bool    `json:"is_active"`
}

// 3. Order is a transaction made by a customer.
type Order struct {
	ID        int64       `json:"id"`
	Customer  *Customer   `json:"customer"`
	Status    OrderStatus `json:"status"`
	Total     Money       `json:"total"`
	Items     []OrderItem `json:"items"`
	Coupons   [2]string   `json:"coupons"`
	OrderedAt time.Time   `json:"ordered_at"`
}

// 4. OrderItem is one product line of an order.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	SKU       SKU    `json:"sku"`
	Quantity  uint8  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	Note      string `json:"note,omitempty"`
}

// 5. OrderStatus is drawn from the declared statuses only.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// 6. Category is recursive: generation stops one level below the first
// repetition.
type Category struct {
	Name     string     `json:"name"`
	Parent   *Category  `json:"parent"`
	Children []Category `json:"children"`
}

// Money is an amount in cents. It is built either field by field or by
// NewMoney.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// NewMoney builds a non-negative amount in a supported currency.
func NewMoney(cents uint32, currency Currency) (Money, error) {
	if _, ok := currencies[currency]; !ok {
		return Money{}, fmt.Errorf("unsupported currency %q", currency)
	}

	return Money{Cents: int64(cents), Currency: string(currency)}, nil
}

// Currency is an ISO 4217 code.
type Currency string

var currencies = map[Currency]struct{}{"EUR": {}, "USD": {}, "GBP": {}}

// SKU is a stock keeping unit.
type SKU string

// TagSet is a set of labels.
type TagSet map[string]struct{}

// Attributes are free-form product properties.
type Attributes map[string]string

// Types lists the shapes the CLI generates, by name.
var Types = map[string]reflect.Type{
	"Product":   reflect.TypeFor[Product](),
	"Customer":  reflect.TypeFor[Customer](),
	"Order":     reflect.TypeFor[Order](),
	"OrderItem": reflect.TypeFor[OrderItem](),
	"Category":  reflect.TypeFor[Category](),
	"Money":     reflect.TypeFor[Money](),
}

// TypeNames returns the keys of Types in order.
func TypeNames() []string {
	names := make([]string, 0, len(Types))
	for name := range Types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Options registers the factories and arbitraries of the store shapes.
func Options() []engine.Option {
	return []engine.Option{
		engine.WithFactory(NewMoney),
		engine.WithArbitrary(reflect.TypeFor[OrderStatus](),
			primitive.OneOf(StatusPending, StatusPaid, StatusShipped, StatusCancelled)),
		engine.WithArbitrary(reflect.TypeFor[Currency](),
			primitive.OneOf(Currency("EUR"), Currency("USD"), Currency("GBP"), Currency("XXX"))),
		engine.WithArbitrary(reflect.TypeFor[SKU](),
			primitive.Strings(reflect.TypeFor[SKU](), 8, 8, "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789")),
	}
}
