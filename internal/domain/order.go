package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an order in status from may move to status to.
// pending -> pending is allowed so a new payment attempt can replace the reference.
func CanTransitionTo(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPending || to == OrderStatusPaid || to == OrderStatusCancelled
	default:
		return false
	}
}

// Settlement is the gateway-reported data captured when a payment is verified.
type Settlement struct {
	AmountMinor     int64  `bson:"amount" json:"amount"`
	Currency        string `bson:"currency" json:"currency"`
	Channel         string `bson:"channel" json:"channel"`
	TransactionDate string `bson:"transaction_date" json:"transaction_date"`
}

// PlacedOrder is a checkout snapshot of a cart. Its position in Session.Orders
// is the only identifier shown to the user.
type PlacedOrder struct {
	Lines            []CartLine      `bson:"lines" json:"items"`
	Total            decimal.Decimal `bson:"total" json:"total"`
	Status           OrderStatus     `bson:"status" json:"status"`
	CreatedAt        time.Time       `bson:"created_at" json:"createdAt"`
	PaymentReference string          `bson:"payment_reference,omitempty" json:"paystackReference,omitempty"`
	PaidAt           *time.Time      `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	Settlement       *Settlement     `bson:"settlement,omitempty" json:"paystackData,omitempty"`
}

// NewPlacedOrder snapshots the cart into a pending order.
func NewPlacedOrder(cart Cart, now time.Time) PlacedOrder {
	snapshot := cart.clone()
	return PlacedOrder{
		Lines:     snapshot.Lines,
		Total:     snapshot.Total,
		Status:    OrderStatusPending,
		CreatedAt: now,
	}
}

// AmountMinor is the order total in the smallest currency unit, rounded to the nearest integer.
func (o PlacedOrder) AmountMinor() int64 {
	return o.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// AssignReference records a new payment attempt. The order stays pending.
func (o *PlacedOrder) AssignReference(reference string) error {
	if !CanTransitionTo(o.Status, OrderStatusPending) {
		return ErrIllegalTransition
	}
	o.PaymentReference = reference
	return nil
}

// MarkPaid moves a pending order to paid and stamps the settlement data.
func (o *PlacedOrder) MarkPaid(at time.Time, settlement Settlement) error {
	if !CanTransitionTo(o.Status, OrderStatusPaid) {
		return ErrIllegalTransition
	}
	o.Status = OrderStatusPaid
	o.PaidAt = &at
	o.Settlement = &settlement
	return nil
}

func (o PlacedOrder) clone() PlacedOrder {
	out := o
	if o.Lines != nil {
		out.Lines = make([]CartLine, len(o.Lines))
		copy(out.Lines, o.Lines)
	}
	if o.PaidAt != nil {
		at := *o.PaidAt
		out.PaidAt = &at
	}
	if o.Settlement != nil {
		s := *o.Settlement
		out.Settlement = &s
	}
	return out
}
