package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CardRepo persists discount cards.
type CardRepo struct {
	DB Querier
}

// GetByNumber resolves a card by its number. An unknown number is not an
// error; it returns (nil, nil) so checkout can proceed without a discount.
func (r CardRepo) GetByNumber(ctx context.Context, number int64) (*DiscountCard, error) {
	row := r.DB.QueryRow(ctx, "SELECT id, number, amount FROM discount_card WHERE number = $1", number)
	var c DiscountCard
	if err := row.Scan(&c.ID, &c.Number, &c.DiscountPercentage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card by number: %w", err)
	}
	return &c, nil
}

// GetByID returns a single card.
func (r CardRepo) GetByID(ctx context.Context, id int64) (DiscountCard, error) {
	row := r.DB.QueryRow(ctx, "SELECT id, number, amount FROM discount_card WHERE id = $1", id)
	var c DiscountCard
	if err := row.Scan(&c.ID, &c.Number, &c.DiscountPercentage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DiscountCard{}, ErrNotFound
		}
		return DiscountCard{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// List returns all cards in id order.
func (r CardRepo) List(ctx context.Context) ([]DiscountCard, error) {
	rows, err := r.DB.Query(ctx, "SELECT id, number, amount FROM discount_card ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []DiscountCard
	for rows.Next() {
		var c DiscountCard
		if err := rows.Scan(&c.ID, &c.Number, &c.DiscountPercentage); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// Create inserts a card and returns it with its generated id.
func (r CardRepo) Create(ctx context.Context, c DiscountCard) (DiscountCard, error) {
	row := r.DB.QueryRow(ctx,
		"INSERT INTO discount_card (number, amount) VALUES ($1, $2) RETURNING id",
		c.Number, c.DiscountPercentage)
	if err := row.Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return DiscountCard{}, ErrDuplicateNumber
		}
		return DiscountCard{}, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

// Update overwrites the card row.
func (r CardRepo) Update(ctx context.Context, c DiscountCard) error {
	tag, err := r.DB.Exec(ctx,
		"UPDATE discount_card SET number = $2, amount = $3 WHERE id = $1",
		c.ID, c.Number, c.DiscountPercentage)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return fmt.Errorf("update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the card row.
func (r CardRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM discount_card WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
