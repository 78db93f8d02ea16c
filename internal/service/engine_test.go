package service

import (
	"context"
	"testing"

	"github.com/fjod/quickbites/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, h *harness, key string, messages ...string) *Outcome {
	t.Helper()
	var out *Outcome
	for _, m := range messages {
		var err error
		out, err = h.engine.Handle(context.Background(), key, m)
		require.NoError(t, err, "message %q", m)
	}
	return out
}

func TestHandle_FirstContactCreatesSession(t *testing.T) {
	h := newHarness()

	out := send(t, h, "s1", "")
	assert.Equal(t, EffectShowMainMenu, out.Effect)
	assert.Equal(t, domain.StateMain, out.Session.State)
	assert.Equal(t, 1, h.store.creates)
	assert.Equal(t, 0, h.store.saves)
}

func TestHandle_MissingKey(t *testing.T) {
	h := newHarness()

	_, err := h.engine.Handle(context.Background(), " ", "1")
	assert.ErrorIs(t, err, ErrMissingSessionKey)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHandle_ListThenAdd(t *testing.T) {
	h := newHarness()

	out := send(t, h, "s1", "1")
	assert.Equal(t, EffectListCatalog, out.Effect)
	require.Len(t, out.Menu, 4)
	assert.Equal(t, "Beef Burger", out.Menu[0].Name)
	assert.Equal(t, domain.StateOrdering, h.store.get("s1").State)
	assert.Equal(t, []int64{4, 3, 2, 1}, h.store.get("s1").Menu.ItemIDs)

	out = send(t, h, "s1", "1")
	assert.Equal(t, EffectAddItem, out.Effect)
	require.NotNil(t, out.Added)
	assert.Equal(t, "Beef Burger", out.Added.Name)
	assert.True(t, out.Session.CurrentOrder.Total.Equal(decimal.NewFromInt(1000)))

	stored := h.store.get("s1")
	assert.Equal(t, domain.StateMain, stored.State)
	assert.False(t, stored.Menu.Valid)
	assert.Empty(t, stored.Menu.ItemIDs)
}

func TestHandle_RepeatedAddsMergeLine(t *testing.T) {
	h := newHarness()

	for i := 0; i < 3; i++ {
		send(t, h, "s1", "1", "4") // Jollof Rice
	}

	cart := h.store.get("s1").CurrentOrder
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].LineTotal.Equal(decimal.NewFromInt(3600)))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(3600)))
}

func TestHandle_AddUsesCurrentPrice(t *testing.T) {
	h := newHarness()

	send(t, h, "s1", "1", "4")
	h.catalog.setPrice(1, 1500)
	send(t, h, "s1", "1", "4")

	cart := h.store.get("s1").CurrentOrder
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1500)))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(3000)))
}

func TestHandle_TotalIsSumOfLines(t *testing.T) {
	h := newHarness()

	send(t, h, "s1", "1", "1", "1", "2", "1", "1")

	cart := h.store.get("s1").CurrentOrder
	sum := decimal.Zero
	for _, l := range cart.Lines {
		sum = sum.Add(l.LineTotal)
	}
	assert.True(t, cart.Total.Equal(sum))
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(2900)))
}

func TestHandle_OutOfRangeSelectionKeepsMenu(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1")
	saves := h.store.saves

	_, err := h.engine.Handle(context.Background(), "s1", "9")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.ErrorIs(t, err, ErrValidation)

	stored := h.store.get("s1")
	assert.Equal(t, domain.StateOrdering, stored.State)
	assert.Equal(t, 4, stored.Menu.Len())
	assert.Equal(t, saves, h.store.saves)
}

func TestHandle_TextWhileOrdering(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1")

	_, err := h.engine.Handle(context.Background(), "s1", "burger please")
	assert.ErrorIs(t, err, ErrUnrecognizedInput)
	assert.Equal(t, domain.StateOrdering, h.store.get("s1").State)
}

func TestHandle_BackClearsMenu(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1")

	out := send(t, h, "s1", "back")
	assert.Equal(t, EffectBackToMain, out.Effect)
	stored := h.store.get("s1")
	assert.Equal(t, domain.StateMain, stored.State)
	assert.False(t, stored.Menu.Valid)
}

func TestHandle_EmptyWhileOrderingReturnsToMain(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1")

	out := send(t, h, "s1", "")
	assert.Equal(t, EffectShowMainMenu, out.Effect)
	assert.Equal(t, domain.StateMain, h.store.get("s1").State)
}

func TestHandle_ItemRemovedFromCatalog(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1")
	h.catalog.remove(4)

	_, err := h.engine.Handle(context.Background(), "s1", "1")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	stored := h.store.get("s1")
	assert.Equal(t, domain.StateOrdering, stored.State)
	assert.True(t, stored.CurrentOrder.IsEmpty())
}

func TestHandle_EmptyCatalogStaysMain(t *testing.T) {
	h := newHarness()
	h.catalog.items = nil

	out := send(t, h, "s1", "1")
	assert.Equal(t, EffectListCatalog, out.Effect)
	assert.Empty(t, out.Menu)
	assert.Equal(t, domain.StateMain, out.Session.State)
	assert.Equal(t, domain.StateMain, h.store.get("s1").State)
}

func TestHandle_CatalogFailure(t *testing.T) {
	h := newHarness()
	h.catalog.listErr = errStoreDown

	_, err := h.engine.Handle(context.Background(), "s1", "1")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestHandle_ViewCartIsReadOnly(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1", "2")
	saves := h.store.saves

	out := send(t, h, "s1", "97")
	assert.Equal(t, EffectViewCart, out.Effect)
	assert.Len(t, out.Session.CurrentOrder.Lines, 1)
	assert.Equal(t, saves, h.store.saves)
}

func TestHandle_ClearCart(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1", "2", "1", "3")

	out := send(t, h, "s1", "0")
	assert.Equal(t, EffectClearCart, out.Effect)
	stored := h.store.get("s1")
	assert.True(t, stored.CurrentOrder.IsEmpty())
	assert.True(t, stored.CurrentOrder.Total.IsZero())

	// clearing an empty cart still succeeds
	send(t, h, "s1", "0")
}

func TestHandle_CheckoutEmptyCart(t *testing.T) {
	h := newHarness()

	_, err := h.engine.Handle(context.Background(), "s1", "99")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, h.store.get("s1").Orders)
	assert.Empty(t, h.events.placed)
}

func TestHandle_CheckoutTwoItems(t *testing.T) {
	h := newHarness()
	// Fried Rice 1300 + Jollof Rice 1200
	send(t, h, "s1", "1", "3", "1", "4")
	before := h.store.get("s1").CurrentOrder.Total
	require.True(t, before.Equal(decimal.NewFromInt(2500)))

	out := send(t, h, "s1", "99")
	assert.Equal(t, EffectCheckout, out.Effect)
	assert.Equal(t, 1, out.OrderNumber)

	stored := h.store.get("s1")
	require.Len(t, stored.Orders, 1)
	assert.True(t, stored.Orders[0].Total.Equal(before))
	assert.Len(t, stored.Orders[0].Lines, 2)
	assert.Equal(t, domain.OrderStatusPending, stored.Orders[0].Status)
	assert.False(t, stored.Orders[0].CreatedAt.IsZero())
	assert.True(t, stored.CurrentOrder.IsEmpty())
	assert.Equal(t, []int{1}, h.events.placed)
}

func TestHandle_OrderNumbersAreStable(t *testing.T) {
	h := newHarness()

	send(t, h, "s1", "1", "1", "99") // order 1: 1000
	send(t, h, "s1", "1", "2", "99") // order 2: 900
	_, err := h.engine.InitializePayment(context.Background(), "s1", 1)
	require.NoError(t, err)
	out := send(t, h, "s1", "1", "3", "99") // order 3: 1300
	assert.Equal(t, 3, out.OrderNumber)

	orders := h.store.get("s1").Orders
	require.Len(t, orders, 3)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(1000)))
	assert.True(t, orders[1].Total.Equal(decimal.NewFromInt(900)))
	assert.True(t, orders[2].Total.Equal(decimal.NewFromInt(1300)))
	assert.Equal(t, []int{1, 2, 3}, h.events.placed)
}

func TestHandle_OrderHistoryIsReadOnly(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1", "1", "99")
	saves := h.store.saves

	out := send(t, h, "s1", "98")
	assert.Equal(t, EffectOrderHistory, out.Effect)
	assert.Len(t, out.Session.Orders, 1)
	assert.Equal(t, saves, h.store.saves)
}

func TestHandle_PublishFailureDoesNotFailCheckout(t *testing.T) {
	h := newHarness()
	h.events.err = errStoreDown

	out := send(t, h, "s1", "1", "1", "99")
	assert.Equal(t, 1, out.OrderNumber)
	assert.Len(t, h.store.get("s1").Orders, 1)
}

func TestHandle_LoadFailure(t *testing.T) {
	h := newHarness()
	h.store.findErr = errStoreDown

	_, err := h.engine.Handle(context.Background(), "s1", "1")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestHandle_SaveFailureLeavesStoredSession(t *testing.T) {
	h := newHarness()
	send(t, h, "s1", "1", "1")
	h.store.saveErr = errStoreDown

	_, err := h.engine.Handle(context.Background(), "s1", "99")
	assert.ErrorIs(t, err, ErrPersistence)

	h.store.saveErr = nil
	stored := h.store.get("s1")
	assert.Empty(t, stored.Orders)
	assert.Len(t, stored.CurrentOrder.Lines, 1)
	assert.Empty(t, h.events.placed)
}

func TestHandle_SessionsAreIndependent(t *testing.T) {
	h := newHarness()

	send(t, h, "a", "1")
	send(t, h, "b", "1", "2")

	assert.Equal(t, domain.StateOrdering, h.store.get("a").State)
	assert.True(t, h.store.get("a").CurrentOrder.IsEmpty())
	assert.Len(t, h.store.get("b").CurrentOrder.Lines, 1)
}
