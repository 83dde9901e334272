package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailpoint/checkout-api/internal/store"
)

// CartLine is one requested (product, quantity) pair. Duplicate product ids
// across lines are allowed and kept as separate lines.
type CartLine struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

// Request is the checkout payload. A zero DiscountCard means "no card".
type Request struct {
	Products     []CartLine      `json:"products" validate:"required,min=1,dive"`
	DiscountCard int64           `json:"discountCard" validate:"gte=0"`
	Balance      decimal.Decimal `json:"balanceDebitCard"`
}

// PricedLine is an immutable priced cart line. Subtotal is exact; Discount and
// LineTotal are rounded half-up to two decimals.
type PricedLine struct {
	Product   store.Product
	Quantity  int32
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// Totals aggregates the priced cart.
type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Receipt is the fully priced cart ready for rendering, in input order.
type Receipt struct {
	IssuedAt time.Time
	Lines    []PricedLine
	Card     *store.DiscountCard
	Totals   Totals
}
