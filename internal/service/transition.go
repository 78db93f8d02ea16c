package service

import (
	"github.com/fjod/quickbites/internal/command"
	"github.com/fjod/quickbites/internal/domain"
)

type Effect int

const (
	EffectShowMainMenu Effect = iota
	EffectListCatalog
	EffectViewCart
	EffectClearCart
	EffectCheckout
	EffectOrderHistory
	EffectInitPayment
	EffectAddItem
	EffectRejectSelection
	EffectBackToMain
	EffectInvalidInput
)

func (e Effect) String() string {
	switch e {
	case EffectShowMainMenu:
		return "main_menu"
	case EffectListCatalog:
		return "list_catalog"
	case EffectViewCart:
		return "view_cart"
	case EffectClearCart:
		return "clear_cart"
	case EffectCheckout:
		return "checkout"
	case EffectOrderHistory:
		return "order_history"
	case EffectInitPayment:
		return "init_payment"
	case EffectAddItem:
		return "add_item"
	case EffectRejectSelection:
		return "reject_selection"
	case EffectBackToMain:
		return "back_to_main"
	case EffectInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Main menu options. They match the exact digit string, so "01" is not "1".
const (
	optionOrder   = "1"
	optionCart    = "97"
	optionCancel  = "0"
	optionCheck   = "99"
	optionHistory = "98"
)

// Transition is the dialogue table. It has no side effects: the engine applies
// the effect and may still keep the state (e.g. an empty catalog).
func Transition(state domain.SessionState, menu domain.MenuMap, cmd command.Command) (domain.SessionState, Effect) {
	if cmd.Kind == command.KindPay {
		return state, EffectInitPayment
	}

	if state == domain.StateOrdering {
		return transitionOrdering(menu, cmd)
	}
	return transitionMain(cmd)
}

func transitionMain(cmd command.Command) (domain.SessionState, Effect) {
	if cmd.Kind != command.KindDigits {
		return domain.StateMain, EffectShowMainMenu
	}

	switch cmd.Raw {
	case optionOrder:
		return domain.StateOrdering, EffectListCatalog
	case optionCart:
		return domain.StateMain, EffectViewCart
	case optionCancel:
		return domain.StateMain, EffectClearCart
	case optionCheck:
		return domain.StateMain, EffectCheckout
	case optionHistory:
		return domain.StateMain, EffectOrderHistory
	default:
		return domain.StateMain, EffectShowMainMenu
	}
}

func transitionOrdering(menu domain.MenuMap, cmd command.Command) (domain.SessionState, Effect) {
	switch cmd.Kind {
	case command.KindDigits:
		if _, ok := menu.Resolve(cmd.Value); ok {
			return domain.StateMain, EffectAddItem
		}
		return domain.StateOrdering, EffectRejectSelection
	case command.KindBack:
		return domain.StateMain, EffectBackToMain
	case command.KindEmpty:
		return domain.StateMain, EffectShowMainMenu
	default:
		return domain.StateOrdering, EffectInvalidInput
	}
}
