package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment outcome reported by the gateway.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

// Intent is the payment request submitted for one checkout attempt. The
// amount is the total captured when the attempt began.
type Intent struct {
	IntentID string          `json:"intentId"`
	UserID   string          `json:"userId"`
	Amount   decimal.Decimal `json:"amount"`
}

// Result is the gateway's verdict. Reason is only set for failures and is
// surfaced to the user verbatim.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Gateway submits payment intents to an external payment processor. The
// checkout reconciler owns everything else; implementations only move money.
type Gateway interface {
	Submit(ctx context.Context, intent Intent) (Result, error)
}

// HTTPGateway submits intents to a remote payment service over JSON HTTP.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway client for the given base URL with a
// bounded request timeout.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit posts the intent to the payment service and decodes its verdict.
// Transport and protocol errors are returned as errors, not failed results,
// so the caller can distinguish "declined" from "unreachable".
func (g *HTTPGateway) Submit(ctx context.Context, intent Intent) (Result, error) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return Result{}, fmt.Errorf("encoding payment intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment_intents", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("building payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submitting payment intent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decoding payment result: %w", err)
	}

	switch result.Status {
	case StatusSucceeded, StatusCanceled, StatusFailed:
		return result, nil
	default:
		return Result{}, fmt.Errorf("payment service returned unknown status %q", result.Status)
	}
}
