package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// GatewayLogger receives structured gateway events.
type GatewayLogger func(ctx context.Context, event string, fields map[string]any)

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayConfig configures the RazorpayGateway.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	Logger    GatewayLogger
	Clock     func() time.Time

	// Orders overrides the Razorpay Orders API client, primarily for tests.
	Orders orderAPI
}

// RazorpayGateway implements Gateway using the Razorpay Orders API.
type RazorpayGateway struct {
	orders    orderAPI
	keyID     string
	keySecret string
	currency  string
	clock     func() time.Time
	logger    GatewayLogger
}

// NewRazorpayGateway constructs a Razorpay-backed Gateway.
func NewRazorpayGateway(cfg RazorpayConfig) (*RazorpayGateway, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errors.New("razorpay: key secret is required")
	}

	orders := cfg.Orders
	if orders == nil {
		if keyID == "" {
			return nil, errors.New("razorpay: key id is required")
		}
		orders = razorpay.NewClient(keyID, keySecret).Order
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	return &RazorpayGateway{
		orders:    orders,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// CreateIntent opens a Razorpay order for the requested amount.
func (g *RazorpayGateway) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	if g == nil {
		return Intent{}, errors.New("razorpay: gateway is nil")
	}
	if req.Amount <= 0 {
		return Intent{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = g.currency
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": currency,
	}
	if receipt := strings.TrimSpace(req.Receipt); receipt != "" {
		data["receipt"] = receipt
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	started := g.clock()
	body, err := g.orders.Create(data, nil)
	if err != nil {
		g.logger(ctx, "gateway.intent.create_failed", map[string]any{
			"receipt": req.Receipt,
			"error":   err.Error(),
		})
		return Intent{}, fmt.Errorf("%w: create order: %v", ErrGateway, err)
	}

	intent, err := intentFromResponse(body, g.keyID)
	if err != nil {
		return Intent{}, err
	}

	g.logger(ctx, "gateway.intent.created", map[string]any{
		"intent_id": intent.ID,
		"amount":    intent.Amount,
		"currency":  intent.Currency,
		"latency":   g.clock().Sub(started).String(),
	})
	return intent, nil
}

// VerifyConfirmation checks the client-presented signature in constant time.
func (g *RazorpayGateway) VerifyConfirmation(conf Confirmation) error {
	if g == nil {
		return errors.New("razorpay: gateway is nil")
	}
	return VerifyConfirmationSignature(g.keySecret, conf)
}

func intentFromResponse(body map[string]interface{}, keyID string) (Intent, error) {
	id, _ := body["id"].(string)
	if strings.TrimSpace(id) == "" {
		return Intent{}, fmt.Errorf("%w: response missing order id", ErrGateway)
	}

	amount, err := amountFromResponse(body["amount"])
	if err != nil {
		return Intent{}, err
	}

	currency, _ := body["currency"].(string)

	return Intent{
		ID:       id,
		Amount:   amount,
		Currency: strings.ToUpper(currency),
		KeyID:    keyID,
	}, nil
}

func amountFromResponse(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: response amount %q not integral", ErrGateway, v.String())
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: response missing amount", ErrGateway)
	}
}
