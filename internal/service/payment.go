package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/quickbites/internal/command"
	"github.com/fjod/quickbites/internal/domain"
	"github.com/fjod/quickbites/internal/gateway"
	"github.com/fjod/quickbites/internal/store"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type PaymentInit struct {
	OrderNumber      int
	AuthorizationURL string
	Reference        string
	Amount           decimal.Decimal
}

type Verification struct {
	Success     bool
	Status      string
	OrderNumber int
	Order       *domain.PlacedOrder
}

// InitializePayment starts a gateway transaction for order number n of the
// session. An unknown session has no orders, so it is reported as an invalid
// order number and nothing is created.
func (e *Engine) InitializePayment(ctx context.Context, key string, n int) (started *PaymentInit, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.InitializePayment")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("order", n))

	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidOrderIndex
	}

	session, err := e.sessions.Find(ctx, key)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, ErrInvalidOrderIndex
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", ErrPersistence, err)
	}

	started, _, err = e.initialize(ctx, session, n)
	return started, err
}

func (e *Engine) pay(ctx context.Context, session *domain.Session, cmd command.Command) (*Outcome, error) {
	if !cmd.ValidIndex {
		return nil, ErrMissingOrderIndex
	}

	started, updated, err := e.initialize(ctx, session, cmd.Value)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Effect:      EffectInitPayment,
		Session:     updated,
		OrderNumber: started.OrderNumber,
		Payment:     started,
	}, nil
}

// initialize calls the gateway first and stores the new reference only after
// the gateway accepted it. Every call issues a fresh reference.
func (e *Engine) initialize(ctx context.Context, session *domain.Session, n int) (*PaymentInit, *domain.Session, error) {
	order, ok := session.Order(n)
	if !ok {
		return nil, nil, ErrInvalidOrderIndex
	}
	switch order.Status {
	case domain.OrderStatusPaid:
		return nil, nil, ErrAlreadyPaid
	case domain.OrderStatusCancelled:
		return nil, nil, ErrOrderCancelled
	}
	amount := order.AmountMinor()
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	reference := e.refs.Next(session.Key, n)
	res, err := e.gateway.Initialize(ctx, gateway.InitializeRequest{
		AmountMinor: amount,
		Email:       e.cfg.CustomerEmail,
		Reference:   reference,
		CallbackURL: e.cfg.CallbackURL,
		Metadata: map[string]any{
			"orderIndex": n,
			"sessionId":  session.Key,
		},
	})
	if err != nil {
		e.log.WarnContext(ctx, "payment initialization failed",
			slog.String("session", session.Key),
			slog.Int("order", n),
			slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: initialize: %w", ErrGateway, err)
	}

	working := session.Clone()
	target, _ := working.Order(n)
	if err := target.AssignReference(reference); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err := e.save(ctx, working); err != nil {
		return nil, nil, err
	}

	e.log.InfoContext(ctx, "payment initialized",
		slog.String("session", session.Key),
		slog.Int("order", n),
		slog.String("reference", reference))

	return &PaymentInit{
		OrderNumber:      n,
		AuthorizationURL: res.AuthorizationURL,
		Reference:        reference,
		Amount:           order.Total,
	}, working, nil
}

// VerifyPayment asks the gateway about reference and marks the order paid on
// success. It is safe to repeat: a paid order is confirmed without calling
// the gateway again, and a non-success status changes nothing.
func (e *Engine) VerifyPayment(ctx context.Context, reference string) (v *Verification, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.VerifyPayment")
	defer func() { endSpan(span, err) }()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrMissingReference
	}
	span.SetAttributes(attribute.String("reference", reference))

	session, err := e.sessions.FindByReference(ctx, reference)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find by reference: %w", ErrPersistence, err)
	}

	order, n, ok := session.OrderByReference(reference)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.Status == domain.OrderStatusPaid {
		paid := *order
		return &Verification{Success: true, Status: domain.OrderStatusPaid.String(), OrderNumber: n, Order: &paid}, nil
	}

	tx, err := e.gateway.Verify(ctx, reference)
	if err != nil {
		e.log.WarnContext(ctx, "payment verification failed",
			slog.String("reference", reference),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: verify: %w", ErrGateway, err)
	}
	if !tx.Succeeded() {
		return &Verification{Success: false, Status: tx.Status, OrderNumber: n}, nil
	}

	working := session.Clone()
	target, _ := working.Order(n)
	err = target.MarkPaid(e.now(), domain.Settlement{
		AmountMinor:     tx.AmountMinor,
		Currency:        tx.Currency,
		Channel:         tx.Channel,
		TransactionDate: tx.TransactionDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err := e.save(ctx, working); err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "order paid",
		slog.String("session", working.Key),
		slog.Int("order", n),
		slog.String("reference", reference))
	e.publish(ctx, "paid", working, n)

	paid := *target
	return &Verification{Success: true, Status: domain.OrderStatusPaid.String(), OrderNumber: n, Order: &paid}, nil
}
