package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/quickbites/internal/catalog"
	"github.com/fjod/quickbites/internal/command"
	"github.com/fjod/quickbites/internal/domain"
	"github.com/fjod/quickbites/internal/gateway"
	"github.com/fjod/quickbites/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SessionStore persists sessions. Find and FindByReference return
// store.ErrSessionNotFound for unknown keys.
type SessionStore interface {
	Find(ctx context.Context, key string) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	FindByReference(ctx context.Context, reference string) (*domain.Session, error)
}

// EventPublisher is notified after an order change has been persisted.
type EventPublisher interface {
	OrderPlaced(ctx context.Context, sessionKey string, number int, order domain.PlacedOrder) error
	OrderPaid(ctx context.Context, sessionKey string, number int, order domain.PlacedOrder) error
}

type Config struct {
	// CallbackURL is where the gateway sends the customer after paying.
	CallbackURL string
	// CustomerEmail is sent to the gateway for every transaction; chat users are anonymous.
	CustomerEmail string
}

// Outcome is what a chat command did. Session is the state after the command.
type Outcome struct {
	Effect      Effect
	Session     *domain.Session
	Menu        []domain.Item
	Added       *domain.CartLine
	OrderNumber int
	Payment     *PaymentInit
}

type Engine struct {
	sessions SessionStore
	catalog  catalog.Lookup
	gateway  gateway.Gateway
	events   EventPublisher
	refs     *ReferenceGenerator
	cfg      Config
	now      func() time.Time
	log      *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Engine)

// WithClock replaces time.Now for timestamps and payment references.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.refs = NewReferenceGenerator(now)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func NewEngine(sessions SessionStore, lookup catalog.Lookup, gw gateway.Gateway, events EventPublisher, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		catalog:  lookup,
		gateway:  gw,
		events:   events,
		refs:     NewReferenceGenerator(time.Now),
		cfg:      cfg,
		now:      time.Now,
		log:      slog.Default(),
		tracer:   otel.Tracer("github.com/fjod/quickbites/internal/service"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(slog.String("component", "engine"))
	return e
}

// Handle runs one chat message against the session identified by key,
// creating the session on first contact.
func (e *Engine) Handle(ctx context.Context, key, message string) (out *Outcome, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.Handle")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(key) == "" {
		return nil, ErrMissingSessionKey
	}

	session, err := e.loadOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	cmd := command.Parse(message)
	if cmd.Kind == command.KindPay {
		span.SetAttributes(attribute.String("effect", EffectInitPayment.String()))
		return e.pay(ctx, session, cmd)
	}

	next, effect := Transition(session.State, session.Menu, cmd)
	span.SetAttributes(attribute.String("effect", effect.String()))

	working := session.Clone()
	out = &Outcome{Effect: effect, Session: working}

	switch effect {
	case EffectShowMainMenu:
		if working.State != next {
			working.LeaveOrdering()
			err = e.save(ctx, working)
		}
	case EffectListCatalog:
		out.Menu, err = e.listCatalog(ctx, working)
	case EffectViewCart, EffectOrderHistory:
	case EffectClearCart:
		working.CurrentOrder.Clear()
		err = e.save(ctx, working)
	case EffectCheckout:
		out.OrderNumber, err = e.checkout(ctx, working)
	case EffectAddItem:
		out.Added, err = e.addItem(ctx, working, cmd.Value)
	case EffectBackToMain:
		working.LeaveOrdering()
		err = e.save(ctx, working)
	case EffectRejectSelection:
		err = ErrInvalidSelection
	case EffectInvalidInput:
		err = ErrUnrecognizedInput
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) loadOrCreate(ctx context.Context, key string) (*domain.Session, error) {
	session, err := e.sessions.Find(ctx, key)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, store.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: load session: %w", ErrPersistence, err)
	}

	session, err = e.sessions.Create(ctx, domain.NewSession(key, e.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %w", ErrPersistence, err)
	}
	e.log.InfoContext(ctx, "session created", slog.String("session", key))
	return session, nil
}

func (e *Engine) save(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("%w: save session: %w", ErrPersistence, err)
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, event string, session *domain.Session, number int) {
	if e.events == nil {
		return
	}
	order, ok := session.Order(number)
	if !ok {
		return
	}

	var err error
	switch event {
	case "placed":
		err = e.events.OrderPlaced(ctx, session.Key, number, *order)
	case "paid":
		err = e.events.OrderPaid(ctx, session.Key, number, *order)
	}
	if err != nil {
		e.log.WarnContext(ctx, "order event not published",
			slog.String("event", event),
			slog.String("session", session.Key),
			slog.Int("order", number),
			slog.Any("error", err))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
