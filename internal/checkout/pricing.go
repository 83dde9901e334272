package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailpoint/checkout-api/internal/money"
	"github.com/retailpoint/checkout-api/internal/store"
)

// WholesaleMinQty is the line quantity at which wholesale pricing kicks in
// for wholesale-flagged products.
const WholesaleMinQty = 5

// WholesalePercent is the discount applied to qualifying wholesale lines.
const WholesalePercent = 10

// Price computes a receipt for a validated cart. Lines keep input order.
// Wholesale and card discounts are mutually exclusive per line: a qualifying
// wholesale line gets the flat wholesale percentage and ignores the card.
// Discounts never push a line total below zero.
func Price(lines []CartLine, products map[int64]store.Product, card *store.DiscountCard, issuedAt time.Time) Receipt {
	rcpt := Receipt{
		IssuedAt: issuedAt,
		Lines:    make([]PricedLine, 0, len(lines)),
		Card:     card,
	}

	for _, line := range lines {
		product := products[line.ProductID]
		subtotal := product.Price.Mul(decimal.NewFromInt32(line.Quantity))

		var discount decimal.Decimal
		switch {
		case product.WholesaleProduct && line.Quantity >= WholesaleMinQty:
			discount = money.Percent(subtotal, WholesalePercent)
		case card != nil:
			discount = money.Percent(subtotal, int64(card.DiscountPercentage))
		}
		if discount.GreaterThan(subtotal) {
			discount = money.Round2(subtotal)
		}

		priced := PricedLine{
			Product:   product,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
			Discount:  discount,
			LineTotal: money.Round2(subtotal.Sub(discount)),
		}
		rcpt.Lines = append(rcpt.Lines, priced)

		rcpt.Totals.Subtotal = rcpt.Totals.Subtotal.Add(subtotal)
		rcpt.Totals.Discount = rcpt.Totals.Discount.Add(discount)
		rcpt.Totals.GrandTotal = rcpt.Totals.GrandTotal.Add(priced.LineTotal)
	}

	rcpt.Totals.Subtotal = money.Round2(rcpt.Totals.Subtotal)
	rcpt.Totals.Discount = money.Round2(rcpt.Totals.Discount)
	rcpt.Totals.GrandTotal = money.Round2(rcpt.Totals.GrandTotal)
	return rcpt
}
