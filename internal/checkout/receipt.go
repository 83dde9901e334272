package checkout

import (
	"fmt"
	"strings"

	"github.com/retailpoint/checkout-api/internal/money"
)

const (
	receiptDateLayout = "02.01.2006"
	receiptTimeLayout = "15:04:05"
)

// Render serializes a receipt to its semicolon-separated text form. The
// output is deterministic for a fixed receipt and currency marker.
func Render(rcpt Receipt, marker string) string {
	var b strings.Builder

	b.WriteString("Date;Time\n")
	fmt.Fprintf(&b, "%s;%s\n\n",
		rcpt.IssuedAt.Format(receiptDateLayout),
		rcpt.IssuedAt.Format(receiptTimeLayout))

	b.WriteString("QTY;DESCRIPTION;PRICE;DISCOUNT;TOTAL\n")
	for _, line := range rcpt.Lines {
		fmt.Fprintf(&b, "%d;%s;%s;%s;%s\n",
			line.Quantity,
			line.Product.Description,
			money.Format(line.UnitPrice, marker),
			money.Format(line.Discount, marker),
			money.Format(line.LineTotal, marker))
	}

	if rcpt.Card != nil {
		b.WriteString("\nDISCOUNT CARD;DISCOUNT PERCENTAGE\n")
		fmt.Fprintf(&b, "%d;%d%%\n", rcpt.Card.Number, rcpt.Card.DiscountPercentage)
	}

	b.WriteString("\nTOTAL PRICE;TOTAL DISCOUNT;TOTAL WITH DISCOUNT\n")
	fmt.Fprintf(&b, "%s;%s;%s\n",
		money.Format(rcpt.Totals.Subtotal, marker),
		money.Format(rcpt.Totals.Discount, marker),
		money.Format(rcpt.Totals.GrandTotal, marker))

	return b.String()
}
