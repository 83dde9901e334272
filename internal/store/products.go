package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepo persists products. It owns the stock mutations the checkout
// pipeline relies on.
type ProductRepo struct {
	DB Querier
}

const productColumns = "id, description, price::text, quantity_in_stock, wholesale_product"

// GetAll returns a point-in-time snapshot of the whole catalog in id order.
func (r ProductRepo) GetAll(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, "SELECT "+productColumns+" FROM product ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetByID returns a single product.
func (r ProductRepo) GetByID(ctx context.Context, id int64) (Product, error) {
	row := r.DB.QueryRow(ctx, "SELECT "+productColumns+" FROM product WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts a product and returns it with its generated id.
func (r ProductRepo) Create(ctx context.Context, p Product) (Product, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO product (description, price, quantity_in_stock, wholesale_product)
		 VALUES ($1, $2::numeric, $3, $4) RETURNING id`,
		p.Description, p.Price.StringFixed(2), p.QuantityInStock, p.WholesaleProduct)
	if err := row.Scan(&p.ID); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update overwrites the product row.
func (r ProductRepo) Update(ctx context.Context, p Product) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE product SET description = $2, price = $3::numeric,
		 quantity_in_stock = $4, wholesale_product = $5 WHERE id = $1`,
		p.ID, p.Description, p.Price.StringFixed(2), p.QuantityInStock, p.WholesaleProduct)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product row.
func (r ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM product WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantity sets quantity_in_stock to an absolute value.
func (r ProductRepo) UpdateQuantity(ctx context.Context, id int64, quantity int32) error {
	tag, err := r.DB.Exec(ctx, "UPDATE product SET quantity_in_stock = $2 WHERE id = $1", id, quantity)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically subtracts qty from the product's stock. The update
// only applies while enough units remain, so two concurrent checkouts cannot
// drive the count negative.
func (r ProductRepo) DecrementStock(ctx context.Context, id int64, qty int32) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE product SET quantity_in_stock = quantity_in_stock - $2
		 WHERE id = $1 AND quantity_in_stock >= $2`,
		id, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// best effort: tell the caller how much is actually left
		var available int32
		row := r.DB.QueryRow(ctx, "SELECT quantity_in_stock FROM product WHERE id = $1", id)
		if err := row.Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return &StockConflictError{ProductID: id}
		}
		return &StockConflictError{ProductID: id, Available: available}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p        Product
		priceStr string
	)
	if err := row.Scan(&p.ID, &p.Description, &priceStr, &p.QuantityInStock, &p.WholesaleProduct); err != nil {
		return Product{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return Product{}, fmt.Errorf("parse product price %q: %w", priceStr, err)
	}
	p.Price = price
	return p, nil
}
