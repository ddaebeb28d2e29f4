package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

var (
	// ErrCartInvalidInput signals the caller provided invalid cart data.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartItemNotFound indicates the referenced cart line does not exist.
	ErrCartItemNotFound = errors.New("cart: item not found")
)

// CartServiceDeps bundles collaborators required to construct the cart service.
type CartServiceDeps struct {
	Carts    repositories.CartRepository
	Products repositories.ProductRepository
	Clock    func() time.Time
}

type cartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	clock    func() time.Time
}

// NewCartService wires dependencies into a concrete CartService implementation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("cart service: product repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &cartService{
		carts:    deps.Carts,
		products: deps.Products,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

func (s *cartService) AddItem(ctx context.Context, cmd CartItemCommand) error {
	item, err := s.validate(cmd)
	if err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return fmt.Errorf("%w: product %s not found", ErrCartInvalidInput, item.ProductID)
		}
		return err
	}
	if !product.Active {
		return fmt.Errorf("%w: product %s is not available", ErrCartInvalidInput, item.ProductID)
	}

	item.AddedAt = s.clock()
	return s.carts.Upsert(ctx, item)
}

func (s *cartService) UpdateItem(ctx context.Context, cmd CartItemCommand) error {
	item, err := s.validate(cmd)
	if err != nil {
		return err
	}

	existing, err := s.carts.ListByUser(ctx, item.UserID)
	if err != nil {
		return err
	}
	for _, line := range existing {
		if line.ProductID == item.ProductID {
			item.AddedAt = line.AddedAt
			return s.carts.Upsert(ctx, item)
		}
	}
	return fmt.Errorf("%w: product %s is not in the cart", ErrCartItemNotFound, item.ProductID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	return s.carts.Remove(ctx, userID, productID)
}

// GetCart joins the stored lines with their catalog snapshots. Lines whose
// product has disappeared or been deactivated are dropped from the view.
func (s *cartService) GetCart(ctx context.Context, userID string) (Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Cart{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	cart := Cart{UserID: userID, Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				continue
			}
			return Cart{}, err
		}
		if !product.Active {
			continue
		}

		line := CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
			LineTotal: product.Price * int64(item.Quantity),
			AddedAt:   item.AddedAt,
		}
		cart.Lines = append(cart.Lines, line)
		cart.Subtotal += line.LineTotal
	}
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	return s.carts.Clear(ctx, userID)
}

func (s *cartService) validate(cmd CartItemCommand) (domain.CartItem, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return domain.CartItem{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return domain.CartItem{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity <= 0 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be positive", ErrCartInvalidInput)
	}
	return domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  cmd.Quantity,
	}, nil
}
