package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine matches exactly one of them
// with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrGateway     = errors.New("payment gateway error")
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrMissingSessionKey = fmt.Errorf("%w: session key is required", ErrValidation)
	ErrEmptyCart         = fmt.Errorf("%w: cart is empty, nothing to checkout", ErrValidation)
	ErrInvalidSelection  = fmt.Errorf("%w: selection is outside the menu", ErrValidation)
	ErrUnrecognizedInput = fmt.Errorf("%w: expected an item number", ErrValidation)
	ErrMissingOrderIndex = fmt.Errorf("%w: order number is required", ErrValidation)
	ErrMissingReference  = fmt.Errorf("%w: payment reference is required", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: order amount must be positive", ErrValidation)

	ErrItemNotFound      = fmt.Errorf("%w: catalog item", ErrNotFound)
	ErrInvalidOrderIndex = fmt.Errorf("%w: no order with that number", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("%w: no order for that reference", ErrNotFound)

	ErrAlreadyPaid    = fmt.Errorf("%w: order already paid", ErrConflict)
	ErrOrderCancelled = fmt.Errorf("%w: order is cancelled", ErrConflict)
)
