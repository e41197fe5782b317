package types

import (
	"errors"
	"fmt"
)

// Storage error taxonomy. All of these are recoverable by the caller:
// NotFound surfaces as a no-op or UI message, read/write failures are
// retryable.
var (
	ErrNotFound    = errors.New("not found")
	ErrWriteFailed = errors.New("write failed")
	ErrReadFailed  = errors.New("read failed")
)

// Checkout error conditions.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrIntentConsumed = errors.New("checkout intent already consumed")
)

// PaymentError carries the gateway's failure reason verbatim to the caller.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
