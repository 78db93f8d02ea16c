package gateway

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("gateway rejected credentials")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMalformedResponse   = errors.New("malformed gateway response")
	ErrUnavailable         = errors.New("gateway unavailable")
)

type InitializeRequest struct {
	AmountMinor int64
	Email       string
	Reference   string
	CallbackURL string
	Metadata    map[string]any
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Transaction is the gateway's view of a payment attempt.
type Transaction struct {
	Reference       string
	Status          string
	AmountMinor     int64
	Currency        string
	Channel         string
	TransactionDate string
}

func (t Transaction) Succeeded() bool {
	return t.Status == "success"
}

type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// StatusError is a non-2xx answer from the gateway.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match the well-known statuses with errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrTransactionNotFound
	default:
		return nil
	}
}

func isClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
}
