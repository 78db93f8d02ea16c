package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, name string, price int64) Item {
	return Item{ID: id, Name: name, BasePrice: decimal.NewFromInt(price)}
}

func TestCartAdd_SameItemMergesLines(t *testing.T) {
	var cart Cart
	jollof := item(1, "Jollof Rice", 1200)

	for i := 0; i < 4; i++ {
		cart.Add(jollof)
	}

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].LineTotal.Equal(decimal.NewFromInt(4800)))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(4800)))
}

func TestCartAdd_TotalIsSumOfLines(t *testing.T) {
	var cart Cart
	cart.Add(item(1, "Jollof Rice", 1200))
	cart.Add(item(2, "Fried Rice", 1300))
	cart.Add(item(1, "Jollof Rice", 1200))

	require.Len(t, cart.Lines, 2)
	sum := decimal.Zero
	for _, l := range cart.Lines {
		assert.True(t, l.LineTotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))))
		sum = sum.Add(l.LineTotal)
	}
	assert.True(t, cart.Total.Equal(sum))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(3700)))
}

func TestCartAdd_RederivesPriceOnRepeat(t *testing.T) {
	var cart Cart
	cart.Add(item(1, "Jollof Rice", 1200))
	cart.Add(item(1, "Jollof Rice", 1500))

	require.Len(t, cart.Lines, 1)
	assert.True(t, cart.Lines[0].LineTotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(3000)))
}

func TestCartClear(t *testing.T) {
	var cart Cart
	cart.Add(item(1, "Jollof Rice", 1200))

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total.IsZero())
}
