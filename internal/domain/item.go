package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a purchasable catalog entry.
type Item struct {
	ID          int64
	Name        string
	Description string
	BasePrice   decimal.Decimal
	CreatedAt   time.Time
}
