// Package dialogue turns engine outcomes into chat replies.
package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/quickbites/internal/service"
)

type Engine interface {
	Handle(ctx context.Context, key, message string) (*service.Outcome, error)
}

type CommandObserver interface {
	ObserveCommand(effect, outcome string)
}

const ReplyTypePayment = "payment"

type Reply struct {
	Text       string `json:"reply"`
	Type       string `json:"type,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

type Router struct {
	engine   Engine
	observer CommandObserver
	log      *slog.Logger
}

func NewRouter(engine Engine, observer CommandObserver, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{engine: engine, observer: observer, log: log.With(slog.String("component", "dialogue"))}
}

// Respond always returns a reply to show. A non-nil error means the command
// failed on our side and the caller should answer with a server error status.
func (r *Router) Respond(ctx context.Context, key, message string) (Reply, error) {
	out, err := r.engine.Handle(ctx, key, message)
	if err != nil {
		text, internal := ErrorText(err)
		r.observe("rejected", Kind(err))
		if internal {
			r.log.ErrorContext(ctx, "chat command failed", slog.String("session", key), slog.Any("error", err))
			return Reply{Text: text}, err
		}
		r.log.DebugContext(ctx, "chat command rejected", slog.String("session", key), slog.Any("error", err))
		return Reply{Text: text}, nil
	}

	r.observe(out.Effect.String(), "ok")
	return Render(out), nil
}

func (r *Router) observe(effect, outcome string) {
	if r.observer != nil {
		r.observer.ObserveCommand(effect, outcome)
	}
}

// Render builds the reply for a successful command.
func Render(out *service.Outcome) Reply {
	s := out.Session
	switch out.Effect {
	case service.EffectListCatalog:
		return Reply{Text: renderCatalog(out.Menu)}
	case service.EffectAddItem:
		return Reply{Text: renderAdded(*out.Added, s.CurrentOrder.Total)}
	case service.EffectViewCart:
		return Reply{Text: renderCart(s.CurrentOrder)}
	case service.EffectClearCart:
		return Reply{Text: TextCartCancelled}
	case service.EffectCheckout:
		return Reply{Text: renderPlaced(out.OrderNumber)}
	case service.EffectOrderHistory:
		return Reply{Text: renderHistory(s.Orders)}
	case service.EffectBackToMain:
		return Reply{Text: renderBack()}
	case service.EffectInitPayment:
		p := out.Payment
		return Reply{
			Text:       renderPaymentReady(p.OrderNumber, p.Amount),
			Type:       ReplyTypePayment,
			PaymentURL: p.AuthorizationURL,
			Reference:  p.Reference,
		}
	default:
		return Reply{Text: MainMenu}
	}
}

// ErrorText maps an engine error to the reply shown to the user. internal is
// true for failures the user cannot fix.
func ErrorText(err error) (text string, internal bool) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return TextNothingToPlace, false
	case errors.Is(err, service.ErrInvalidSelection):
		return TextInvalidItem, false
	case errors.Is(err, service.ErrUnrecognizedInput):
		return TextAskItemNumber, false
	case errors.Is(err, service.ErrItemNotFound):
		return TextItemNotFound, false
	case errors.Is(err, service.ErrInvalidOrderIndex), errors.Is(err, service.ErrMissingOrderIndex):
		return TextInvalidOrder, false
	case errors.Is(err, service.ErrAlreadyPaid):
		return TextAlreadyPaid, false
	case errors.Is(err, service.ErrOrderCancelled):
		return TextOrderCancelled, false
	case errors.Is(err, service.ErrInvalidAmount):
		return TextInvalidAmount, false
	case errors.Is(err, service.ErrMissingSessionKey):
		return TextMissingSessionID, false
	case errors.Is(err, service.ErrGateway):
		return TextPaymentFailed, false
	default:
		return TextServerError, true
	}
}

// Kind names the error class for metrics and HTTP status mapping.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, service.ErrValidation):
		return "validation"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	case errors.Is(err, service.ErrGateway):
		return "gateway"
	default:
		return "internal"
	}
}
