package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/quickbites/internal/catalog"
	"github.com/fjod/quickbites/internal/domain"
)

// listCatalog numbers the catalog for selection. An empty catalog leaves the
// session in MAIN with nothing to pick from.
func (e *Engine) listCatalog(ctx context.Context, session *domain.Session) ([]domain.Item, error) {
	items, err := e.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list catalog: %w", ErrPersistence, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	session.EnterOrdering(ids)

	if err := e.save(ctx, session); err != nil {
		return nil, err
	}
	return items, nil
}

// addItem resolves a menu position and merges the item into the cart at its
// current catalog price. Repeated adds are not deduplicated.
func (e *Engine) addItem(ctx context.Context, session *domain.Session, position int) (*domain.CartLine, error) {
	id, ok := session.Menu.Resolve(position)
	if !ok {
		return nil, ErrInvalidSelection
	}

	item, err := e.catalog.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get catalog item: %w", ErrPersistence, err)
	}

	line := session.CurrentOrder.Add(*item)
	session.LeaveOrdering()

	if err := e.save(ctx, session); err != nil {
		return nil, err
	}
	return &line, nil
}

func (e *Engine) checkout(ctx context.Context, session *domain.Session) (int, error) {
	if session.CurrentOrder.IsEmpty() {
		return 0, ErrEmptyCart
	}

	number := session.PlaceOrder(e.now())
	if err := e.save(ctx, session); err != nil {
		return 0, err
	}

	e.log.InfoContext(ctx, "order placed",
		slog.String("session", session.Key),
		slog.Int("order", number),
		slog.String("total", session.Orders[number-1].Total.StringFixed(2)))
	e.publish(ctx, "placed", session, number)
	return number, nil
}
