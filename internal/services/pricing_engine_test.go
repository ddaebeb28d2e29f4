package services

import (
	"errors"
	"testing"

	domain "github.com/manira/api/internal/domain"
)

func TestPriceItemsPercentTakesPrecedence(t *testing.T) {
	items := []domain.OrderLineItem{
		{ProductID: "prd_1", Quantity: 2, UnitPrice: 50000},
	}
	promo := &domain.Promotion{DiscountPercent: 20, DiscountAmount: 99999}

	quote, err := PriceItems(items, promo)
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if quote.OriginalAmount != 100000 {
		t.Fatalf("expected original 100000, got %d", quote.OriginalAmount)
	}
	if quote.DiscountAmount != 20000 {
		t.Fatalf("percent should win over flat amount, got %d", quote.DiscountAmount)
	}
	if quote.TotalAmount != 80000 {
		t.Fatalf("expected total 80000, got %d", quote.TotalAmount)
	}
}

func TestPriceItemsFlatDiscountFloorsAtZero(t *testing.T) {
	items := []domain.OrderLineItem{
		{ProductID: "prd_1", Quantity: 1, UnitPrice: 5000},
	}
	promo := &domain.Promotion{DiscountAmount: 10000}

	quote, err := PriceItems(items, promo)
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if quote.TotalAmount != 0 {
		t.Fatalf("total must never go below zero, got %d", quote.TotalAmount)
	}
	if quote.DiscountAmount != 10000 {
		t.Fatalf("discount should be reported as configured, got %d", quote.DiscountAmount)
	}
}

func TestPriceItemsWithoutPromotion(t *testing.T) {
	quote, err := PriceItems([]domain.OrderLineItem{{ProductID: "prd_1", Quantity: 3, UnitPrice: 1500}}, nil)
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if quote.DiscountAmount != 0 || quote.TotalAmount != 4500 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestPriceItemsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		items []domain.OrderLineItem
	}{
		{name: "empty", items: nil},
		{name: "zero quantity", items: []domain.OrderLineItem{{ProductID: "prd_1", Quantity: 0, UnitPrice: 100}}},
		{name: "negative price", items: []domain.OrderLineItem{{ProductID: "prd_1", Quantity: 1, UnitPrice: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PriceItems(tc.items, nil); !errors.Is(err, ErrPricingInvalidInput) {
				t.Fatalf("expected ErrPricingInvalidInput, got %v", err)
			}
		})
	}
}
