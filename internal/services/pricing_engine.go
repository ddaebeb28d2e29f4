package services

import (
	"errors"
	"fmt"

	domain "github.com/manira/api/internal/domain"
)

// ErrPricingInvalidInput signals bad pricing data such as non-positive quantities.
var ErrPricingInvalidInput = errors.New("pricing: invalid input")

// PriceQuote is the outcome of pricing a set of line items, in minor currency units.
type PriceQuote struct {
	OriginalAmount int64
	DiscountAmount int64
	TotalAmount    int64
}

// PriceItems computes the order totals for the given line items and optional
// promotion. A percentage discount takes precedence over a flat amount; the
// total never goes below zero. Both order submission and the promotion
// preview endpoint price through this function so the two can never drift.
func PriceItems(items []domain.OrderLineItem, promotion *domain.Promotion) (PriceQuote, error) {
	if len(items) == 0 {
		return PriceQuote{}, fmt.Errorf("%w: at least one item is required", ErrPricingInvalidInput)
	}

	var original int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return PriceQuote{}, fmt.Errorf("%w: quantity for %s must be positive", ErrPricingInvalidInput, item.ProductID)
		}
		if item.UnitPrice < 0 {
			return PriceQuote{}, fmt.Errorf("%w: unit price for %s must not be negative", ErrPricingInvalidInput, item.ProductID)
		}
		original += item.LineTotal()
	}

	discount := DiscountFor(promotion, original)
	total := original - discount
	if total < 0 {
		total = 0
	}

	return PriceQuote{
		OriginalAmount: original,
		DiscountAmount: discount,
		TotalAmount:    total,
	}, nil
}

// DiscountFor computes the promotion discount against an order amount.
// Percentage rules win over flat amounts when both are configured.
func DiscountFor(promotion *domain.Promotion, orderAmount int64) int64 {
	if promotion == nil || orderAmount <= 0 {
		return 0
	}
	if promotion.DiscountPercent > 0 {
		return orderAmount * int64(promotion.DiscountPercent) / 100
	}
	if promotion.DiscountAmount > 0 {
		return promotion.DiscountAmount
	}
	return 0
}
