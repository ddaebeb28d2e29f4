package payments

import (
	"context"
	"errors"
)

var (
	// ErrGateway indicates the upstream payment gateway rejected or failed the call.
	ErrGateway = errors.New("payments: gateway error")
	// ErrSignatureMismatch indicates the confirmation signature failed verification.
	ErrSignatureMismatch = errors.New("payments: signature mismatch")
	// ErrInvalidInput indicates the request is malformed before reaching the gateway.
	ErrInvalidInput = errors.New("payments: invalid input")
)

// IntentRequest captures the payload required to open a gateway payment intent.
type IntentRequest struct {
	// Amount in minor currency units.
	Amount   int64
	Currency string
	// Receipt correlates the intent with the local order.
	Receipt string
	Notes   map[string]string
}

// Intent represents the gateway-side order handed to the client for collection.
type Intent struct {
	ID       string
	Amount   int64
	Currency string
	KeyID    string
}

// Confirmation is the signed proof of payment presented by the client.
type Confirmation struct {
	IntentID  string
	PaymentID string
	Signature string
}

// Gateway abstracts the payment provider used for the two-phase confirmation flow.
type Gateway interface {
	// CreateIntent opens a gateway order for the given amount.
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	// VerifyConfirmation checks the client-presented signature against the
	// gateway shared secret. Returns ErrSignatureMismatch on failure.
	VerifyConfirmation(conf Confirmation) error
}
