package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/manira/api/internal/domain"
	pfirestore "github.com/manira/api/internal/platform/firestore"
)

const cartCollection = "cart_items"

// CartRepository stores cart lines in a flat collection keyed by user and
// product, so an upsert for the same pair always lands on one document.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartItemDocument]
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartItemDocument](provider, cartCollection, nil, nil)
	return &CartRepository{base: base}, nil
}

// Upsert writes the cart line for the user/product pair.
func (r *CartRepository) Upsert(ctx context.Context, item domain.CartItem) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	docID, err := cartDocID(item.UserID, item.ProductID)
	if err != nil {
		return err
	}

	_, err = r.base.Set(ctx, docID, fromDomainCartItem(item))
	return err
}

// ListByUser returns the user's cart lines ordered by insertion time.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("cart repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("cart repository: user id is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("user_id", "==", userID).OrderBy("added_at", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDomainCartItem(doc.Data))
	}
	return items, nil
}

// Remove deletes one cart line. Removing a missing line is not an error.
func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	docID, err := cartDocID(userID, productID)
	if err != nil {
		return err
	}
	return r.base.Delete(ctx, docID)
}

// Clear removes every cart line belonging to the user.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return errors.New("cart repository: user id is required")
	}

	items, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := r.Remove(ctx, item.UserID, item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

func cartDocID(userID, productID string) (string, error) {
	userID = strings.TrimSpace(userID)
	productID = strings.TrimSpace(productID)
	if userID == "" {
		return "", errors.New("cart repository: user id is required")
	}
	if productID == "" {
		return "", errors.New("cart repository: product id is required")
	}
	return fmt.Sprintf("%s__%s", userID, productID), nil
}
