package checkout

import "github.com/retailpoint/checkout-api/internal/store"

// Validate resolves every cart line against the catalog snapshot. It fails
// fast on the first offending line in cart order and performs no writes.
// Stock demand is aggregated across duplicate product ids, so a cart asking
// for 2+3 units of a product with 4 in stock fails even though each line fits
// on its own.
func Validate(lines []CartLine, snapshot []store.Product) (map[int64]store.Product, error) {
	byID := make(map[int64]store.Product, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
	}

	demand := make(map[int64]int32, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, &NotFoundError{ProductID: line.ProductID}
		}
		demand[line.ProductID] += line.Quantity
		if demand[line.ProductID] > product.QuantityInStock {
			return nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: demand[line.ProductID],
				Available: product.QuantityInStock,
			}
		}
	}
	return byID, nil
}
