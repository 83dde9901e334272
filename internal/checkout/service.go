package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/retailpoint/checkout-api/internal/obs"
	"github.com/retailpoint/checkout-api/internal/store"
)

// ProductSource supplies the catalog snapshot a checkout validates against.
type ProductSource interface {
	GetAll(ctx context.Context) ([]store.Product, error)
}

// CardSource resolves a discount card by its printed number. An unknown
// number resolves to (nil, nil).
type CardSource interface {
	GetByNumber(ctx context.Context, number int64) (*store.DiscountCard, error)
}

// Service runs the checkout pipeline: validate, price, funds check, render,
// commit. The receipt text is final before any inventory write happens.
type Service struct {
	Products  ProductSource
	Cards     CardSource
	Committer *Committer
	Currency  string
	Now       func() time.Time
	Logger    zerolog.Logger

	// AfterCommit, when set, runs with the committed product ids after a
	// fully successful commit.
	AfterCommit func(ctx context.Context, productIDs []int64)
}

// Checkout processes a cart and returns the rendered receipt. On mid-commit
// failure the receipt is lost and the PersistenceError reports how far the
// commit got.
func (s *Service) Checkout(ctx context.Context, req Request) (string, error) {
	started := time.Now()

	snapshot, err := s.Products.GetAll(ctx)
	if err != nil {
		s.observe("error", started)
		return "", &PersistenceError{Op: "catalog read", Err: err}
	}

	products, err := Validate(req.Products, snapshot)
	if err != nil {
		s.observe("rejected", started)
		return "", err
	}

	var card *store.DiscountCard
	if req.DiscountCard > 0 {
		card, err = s.Cards.GetByNumber(ctx, req.DiscountCard)
		if err != nil {
			s.observe("error", started)
			return "", &PersistenceError{Op: "card lookup", Err: err}
		}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	rcpt := Price(req.Products, products, card, now)

	if rcpt.Totals.GrandTotal.GreaterThan(req.Balance) {
		s.observe("rejected", started)
		return "", &InsufficientFundsError{
			Required:  rcpt.Totals.GrandTotal,
			Available: req.Balance,
		}
	}

	out := Render(rcpt, s.Currency)

	ctx, span := otel.Tracer("checkout").Start(ctx, "checkout.commit")
	err = s.Committer.Commit(ctx, rcpt)
	span.End()
	if err != nil {
		var noStock *InsufficientStockError
		if errors.As(err, &noStock) {
			s.observe("rejected", started)
		} else {
			s.observe("error", started)
		}
		return "", err
	}

	if s.AfterCommit != nil {
		ids := make([]int64, 0, len(rcpt.Lines))
		for _, line := range rcpt.Lines {
			ids = append(ids, line.Product.ID)
		}
		s.AfterCommit(ctx, ids)
	}

	s.observe("ok", started)
	s.Logger.Info().
		Int("lines", len(rcpt.Lines)).
		Str("grand_total", rcpt.Totals.GrandTotal.StringFixed(2)).
		Dur("duration", time.Since(started)).
		Msg("checkout completed")
	return out, nil
}

func (s *Service) observe(result string, started time.Time) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
	if obs.CheckoutDuration != nil {
		obs.CheckoutDuration.Observe(obs.DurationMillis(time.Since(started)))
	}
}
