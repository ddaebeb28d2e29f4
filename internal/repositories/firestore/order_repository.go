package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/manira/api/internal/domain"
	pfirestore "github.com/manira/api/internal/platform/firestore"
	"github.com/manira/api/internal/repositories"
)

const orderCollection = "orders"

// OrderRepository persists orders in Firestore. Status-gated mutations run
// inside a transaction so concurrent admin and payment flows cannot both win.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil, nil)
	return &OrderRepository{base: base, provider: provider}, nil
}

// Insert creates the order document, failing with a conflict when the ID already exists.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	if strings.TrimSpace(order.ID) == "" {
		return errors.New("order repository: order id is required")
	}

	ref, err := r.base.DocumentRef(ctx, order.ID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, fromDomainOrder(order)); err != nil {
		return pfirestore.WrapError("orders.insert", err)
	}
	return nil
}

// FindByID loads a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}

	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return toDomainOrder(doc.ID, doc.Data), nil
}

// List returns orders matching the filter, most recent first.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.UserID != "" {
			query = query.Where("user_id", "==", filter.UserID)
		}
		if filter.Status != "" {
			query = query.Where("status", "==", string(filter.Status))
		}
		if filter.PaymentStatus != "" {
			query = query.Where("payment_status", "==", string(filter.PaymentStatus))
		}
		query = query.OrderBy("created_at", firestore.Desc)
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, toDomainOrder(doc.ID, doc.Data))
	}
	return orders, nil
}

// UpdateIf rewrites the order atomically when its current status is one of
// expectStatus. The mutate callback sees the freshly read order and returns
// the replacement document; a status outside the expected set surfaces as a
// conflict so services can report the observed state.
func (r *OrderRepository) UpdateIf(ctx context.Context, orderID string, expectStatus []domain.OrderStatus, mutate func(order domain.Order) (domain.Order, error)) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}
	if mutate == nil {
		return domain.Order{}, errors.New("order repository: mutate callback is required")
	}

	var updated domain.Order
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.base.DocumentRef(ctx, orderID)
		if err != nil {
			return err
		}

		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return pfirestore.NewNotFoundError("orders.update", fmt.Errorf("order %s not found", orderID))
			}
			return err
		}
		doc, err := r.base.Decode(ctx, snap)
		if err != nil {
			return err
		}
		current := toDomainOrder(doc.ID, doc.Data)

		if len(expectStatus) > 0 && !statusAllowed(current.Status, expectStatus) {
			return pfirestore.NewConflictError("orders.update", fmt.Errorf("order %s is %s", orderID, current.Status))
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.UserID = current.UserID
		next.CreatedAt = current.CreatedAt

		if err := tx.Set(ref, fromDomainOrder(next)); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// Delete removes the order document. Deleting a missing order is not an error.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	if strings.TrimSpace(orderID) == "" {
		return errors.New("order repository: order id is required")
	}
	return r.base.Delete(ctx, orderID)
}

func statusAllowed(current domain.OrderStatus, allowed []domain.OrderStatus) bool {
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}
