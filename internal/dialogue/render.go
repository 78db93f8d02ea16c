package dialogue

import (
	"fmt"
	"strings"

	"github.com/fjod/quickbites/internal/domain"
	"github.com/shopspring/decimal"
)

const MainMenu = "Welcome to QuickBites 🍔\n" +
	"Select:\n" +
	"1 - Place an order\n" +
	"99 - Checkout (place current order)\n" +
	"98 - Order history\n" +
	"97 - Current order\n" +
	"0 - Cancel current order\n" +
	"(Reply with an item number when viewing items)"

const (
	TextEmptyCatalog     = "❌ No menu items available right now."
	TextEmptyCart        = "🛒 Your current order is empty."
	TextCartCancelled    = "❌ Current order cancelled."
	TextNothingToPlace   = "🛒 No order to place."
	TextNoOrders         = "📜 No past orders yet."
	TextInvalidItem      = "❌ Invalid item number."
	TextItemNotFound     = "❌ Item not found."
	TextAskItemNumber    = "❌ Please reply with a valid item number from the menu (or 'back' to return)."
	TextInvalidOrder     = "❌ Invalid order number for payment."
	TextAlreadyPaid      = "❌ Order already paid."
	TextOrderCancelled   = "❌ Order was cancelled and cannot be paid."
	TextInvalidAmount    = "❌ Invalid order amount."
	TextPaymentFailed    = "❌ Payment initialization failed. Please try again."
	TextServerError      = "⚠️ Server error. Please try again later."
	TextMissingSessionID = "⚠️ Missing session. Please reload the page."
)

func FormatMoney(amount decimal.Decimal) string {
	return "₦" + amount.StringFixed(2)
}

func renderCatalog(items []domain.Item) string {
	if len(items) == 0 {
		return TextEmptyCatalog
	}
	var b strings.Builder
	b.WriteString("📋 Menu:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d - %s - %s\n", i+1, it.Name, FormatMoney(it.BasePrice))
	}
	b.WriteString("\nReply with the item number to add to your order.")
	return b.String()
}

func renderAdded(line domain.CartLine, total decimal.Decimal) string {
	return fmt.Sprintf("%s added to your order.\nCurrent total: %s\n\nBack to main menu:\n%s",
		line.Name, FormatMoney(total), MainMenu)
}

func renderCart(cart domain.Cart) string {
	if cart.IsEmpty() {
		return TextEmptyCart
	}
	var b strings.Builder
	b.WriteString("🛒 Current order:\n")
	for i, l := range cart.Lines {
		fmt.Fprintf(&b, "%d. %s x%d - %s\n", i+1, l.Name, l.Quantity, FormatMoney(l.LineTotal))
	}
	fmt.Fprintf(&b, "Total: %s", FormatMoney(cart.Total))
	return b.String()
}

func renderPlaced(number int) string {
	return fmt.Sprintf("✅ Order placed (Order #%d). Reply 'pay %d' to pay now.", number, number)
}

func renderHistory(orders []domain.PlacedOrder) string {
	if len(orders) == 0 {
		return TextNoOrders
	}
	lines := make([]string, len(orders))
	for i, o := range orders {
		lines[i] = fmt.Sprintf("%d. %d item(s) - %s - %s %s",
			i+1, len(o.Lines), FormatMoney(o.Total), statusMarker(o.Status), o.Status)
	}
	return "📜 Order history:\n" + strings.Join(lines, "\n")
}

func statusMarker(s domain.OrderStatus) string {
	switch s {
	case domain.OrderStatusPaid:
		return "✅"
	case domain.OrderStatusPending:
		return "⏳"
	default:
		return "❓"
	}
}

func renderBack() string {
	return "Back to main menu:\n" + MainMenu
}

func renderPaymentReady(number int, amount decimal.Decimal) string {
	return fmt.Sprintf("💳 Payment ready for Order #%d (%s)", number, FormatMoney(amount))
}
