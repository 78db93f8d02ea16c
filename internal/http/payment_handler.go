package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/quickbites/internal/domain"
	"github.com/fjod/quickbites/internal/gateway"
	"github.com/fjod/quickbites/internal/service"
)

type PaymentEngine interface {
	InitializePayment(ctx context.Context, key string, n int) (*service.PaymentInit, error)
	VerifyPayment(ctx context.Context, reference string) (*service.Verification, error)
}

type PaymentHandler struct {
	engine      PaymentEngine
	frontendURL string
	timeout     time.Duration
}

func NewPaymentHandler(engine PaymentEngine, frontendURL string, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		engine:      engine,
		frontendURL: frontendURL,
		timeout:     timeout,
	}
}

// OrderIndex accepts both 2 and "2".
type OrderIndex int

func (o *OrderIndex) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*o = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("orderIndex must be an integer: %w", err)
	}
	*o = OrderIndex(n)
	return nil
}

type InitPaymentRequestDTO struct {
	OrderIndex OrderIndex `json:"orderIndex"`
	SessionID  string     `json:"sessionId,omitempty"`
}

type InitPaymentResponse struct {
	Success          bool   `json:"success"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Message          string `json:"message,omitempty"`
}

type VerifyPaymentRequestDTO struct {
	Reference string `json:"reference"`
}

// Status values for verify failures that never reached a gateway answer.
const (
	verifyStatusError    = "error"
	verifyStatusNotFound = "not_found"
)

type VerifyPaymentResponse struct {
	Success bool                `json:"success"`
	Status  string              `json:"status"`
	Order   *domain.PlacedOrder `json:"order,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Init handles POST /paystack/init.
func (h *PaymentHandler) Init(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req InitPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, InitPaymentResponse{Message: "invalid JSON body"})
		return
	}
	if req.OrderIndex == 0 {
		respondJSON(w, http.StatusBadRequest, InitPaymentResponse{Message: "orderIndex is required"})
		return
	}

	key := ResolveSessionKey(w, r, req.SessionID)
	res, err := h.engine.InitializePayment(ctx, key, int(req.OrderIndex))
	if err != nil {
		status, message := paymentError(err)
		respondJSON(w, status, InitPaymentResponse{Message: message})
		return
	}

	respondJSON(w, http.StatusOK, InitPaymentResponse{
		Success:          true,
		AuthorizationURL: res.AuthorizationURL,
		Reference:        res.Reference,
	})
}

// Verify handles POST /paystack/verify. A transaction the gateway has not
// settled is a normal answer, not an error.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req VerifyPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, VerifyPaymentResponse{Status: verifyStatusError, Message: "invalid JSON body"})
		return
	}

	v, err := h.engine.VerifyPayment(ctx, req.Reference)
	if err != nil {
		status, message := paymentError(err)
		verifyStatus := verifyStatusError
		if status == http.StatusNotFound {
			verifyStatus = verifyStatusNotFound
		}
		respondJSON(w, status, VerifyPaymentResponse{Status: verifyStatus, Message: message})
		return
	}

	if !v.Success {
		respondJSON(w, http.StatusOK, VerifyPaymentResponse{
			Status:  v.Status,
			Message: "Payment not successful",
		})
		return
	}
	respondJSON(w, http.StatusOK, VerifyPaymentResponse{
		Success: true,
		Status:  v.Status,
		Order:   v.Order,
		Message: "Payment verified successfully",
	})
}

// Callback handles the gateway redirect by handing the reference to the frontend.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	if ref := r.URL.Query().Get("reference"); ref != "" {
		q.Set("reference", ref)
		q.Set("status", "callback")
	} else {
		q.Set("error", "missing_reference")
	}
	http.Redirect(w, r, h.frontendURL+"?"+q.Encode(), http.StatusFound)
}

func paymentError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidOrderIndex):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found for this reference"
	case errors.Is(err, service.ErrMissingReference):
		return http.StatusBadRequest, "Missing reference"
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid order amount"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrAlreadyPaid):
		return http.StatusConflict, "Order already paid"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "Order cannot be paid"
	case errors.Is(err, gateway.ErrTransactionNotFound):
		return http.StatusNotFound, "Transaction not found"
	case errors.Is(err, gateway.ErrUnauthorized):
		return http.StatusInternalServerError, "Invalid Paystack secret key"
	case errors.Is(err, service.ErrGateway):
		return http.StatusBadGateway, "Payment gateway error. Please try again."
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
