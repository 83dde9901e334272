// Package store provides pgx-backed access to the product catalog and
// discount card tables.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrStockConflict indicates a conditional stock decrement found fewer
	// units than requested.
	ErrStockConflict = errors.New("store: insufficient stock for decrement")
	// ErrDuplicateNumber indicates a discount card number is already taken.
	ErrDuplicateNumber = errors.New("store: card number already exists")
)

// Product is a catalog row. Price carries exact decimal cents.
type Product struct {
	ID               int64           `json:"id"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	QuantityInStock  int32           `json:"quantityInStock"`
	WholesaleProduct bool            `json:"wholesaleProduct"`
}

// DiscountCard carries a flat percentage discount looked up by card number.
type DiscountCard struct {
	ID                 int64 `json:"id"`
	Number             int64 `json:"number"`
	DiscountPercentage int16 `json:"discountPercentage"`
}

// Querier is the subset of pgxpool.Pool the repositories need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StockConflictError reports a conditional decrement that lost to a
// concurrent checkout, with the stock that remained at that moment.
// errors.Is(err, ErrStockConflict) matches it.
type StockConflictError struct {
	ProductID int64
	Available int32
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("store: product %d has %d units left, decrement refused", e.ProductID, e.Available)
}

func (e *StockConflictError) Is(target error) bool { return target == ErrStockConflict }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
