package services

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/payments"
	"github.com/manira/api/internal/repositories"
)

// repoError is a hand-rolled repositories.RepositoryError for tests.
type repoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string       { return "repository error" }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

type stubOrderRepo struct {
	insertFn   func(context.Context, domain.Order) error
	findFn     func(context.Context, string) (domain.Order, error)
	listFn     func(context.Context, repositories.OrderListFilter) ([]domain.Order, error)
	updateIfFn func(context.Context, string, []domain.OrderStatus, func(domain.Order) (domain.Order, error)) (domain.Order, error)
	deleteFn   func(context.Context, string) error
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderRepo) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubOrderRepo) UpdateIf(ctx context.Context, orderID string, expect []domain.OrderStatus, mutate func(domain.Order) (domain.Order, error)) (domain.Order, error) {
	if s.updateIfFn != nil {
		return s.updateIfFn(ctx, orderID, expect, mutate)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderRepo) Delete(ctx context.Context, orderID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, orderID)
	}
	return nil
}

// fakeOrderStore reproduces the conditional-update contract in memory so
// lifecycle tests exercise the same precondition semantics as the real store.
type fakeOrderStore struct {
	stubOrderRepo
	orders map[string]domain.Order
}

func newFakeOrderStore(orders ...domain.Order) *fakeOrderStore {
	store := &fakeOrderStore{orders: make(map[string]domain.Order)}
	for _, order := range orders {
		store.orders[order.ID] = order
	}
	return store
}

func (s *fakeOrderStore) Insert(_ context.Context, order domain.Order) error {
	if _, ok := s.orders[order.ID]; ok {
		return &repoError{conflict: true}
	}
	s.orders[order.ID] = order
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, &repoError{notFound: true}
	}
	return order, nil
}

func (s *fakeOrderStore) UpdateIf(_ context.Context, orderID string, expect []domain.OrderStatus, mutate func(domain.Order) (domain.Order, error)) (domain.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, &repoError{notFound: true}
	}
	if len(expect) > 0 {
		allowed := false
		for _, status := range expect {
			if order.Status == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return domain.Order{}, &repoError{conflict: true}
		}
	}
	next, err := mutate(order)
	if err != nil {
		return domain.Order{}, err
	}
	s.orders[orderID] = next
	return next, nil
}

type stubProductRepo struct {
	findFn   func(context.Context, string) (domain.Product, error)
	listFn   func(context.Context, repositories.ProductListFilter) ([]domain.Product, error)
	insertFn func(context.Context, domain.Product) error
	updateFn func(context.Context, domain.Product) error
	deleteFn func(context.Context, string) error
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product domain.Product) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn != nil {
		return s.findFn(ctx, productID)
	}
	return domain.Product{}, &repoError{notFound: true}
}

func (s *stubProductRepo) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubProductRepo) Delete(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

// catalogOf builds a product lookup over a fixed set of active products.
func catalogOf(products ...domain.Product) *stubProductRepo {
	index := make(map[string]domain.Product, len(products))
	for _, product := range products {
		index[product.ID] = product
	}
	return &stubProductRepo{
		findFn: func(_ context.Context, id string) (domain.Product, error) {
			product, ok := index[id]
			if !ok {
				return domain.Product{}, &repoError{notFound: true}
			}
			return product, nil
		},
	}
}

type stubCartRepo struct {
	upsertFn func(context.Context, domain.CartItem) error
	listFn   func(context.Context, string) ([]domain.CartItem, error)
	removeFn func(context.Context, string, string) error
	clearFn  func(context.Context, string) error
}

func (s *stubCartRepo) Upsert(ctx context.Context, item domain.CartItem) error {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, item)
	}
	return nil
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubCartRepo) Remove(ctx context.Context, userID, productID string) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, productID)
	}
	return nil
}

func (s *stubCartRepo) Clear(ctx context.Context, userID string) error {
	if s.clearFn != nil {
		return s.clearFn(ctx, userID)
	}
	return nil
}

type stubPromotionRepo struct {
	findByCodeFn func(context.Context, string) (domain.Promotion, error)
	findByIDFn   func(context.Context, string) (domain.Promotion, error)
	insertFn     func(context.Context, domain.Promotion) error
	updateFn     func(context.Context, domain.Promotion) error
	listFn       func(context.Context) ([]domain.Promotion, error)
	deleteFn     func(context.Context, string) error
}

func (s *stubPromotionRepo) Insert(ctx context.Context, promotion domain.Promotion) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, promotion)
	}
	return nil
}

func (s *stubPromotionRepo) Update(ctx context.Context, promotion domain.Promotion) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, promotion)
	}
	return nil
}

func (s *stubPromotionRepo) FindByID(ctx context.Context, promotionID string) (domain.Promotion, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, promotionID)
	}
	return domain.Promotion{}, &repoError{notFound: true}
}

func (s *stubPromotionRepo) FindByCode(ctx context.Context, code string) (domain.Promotion, error) {
	if s.findByCodeFn != nil {
		return s.findByCodeFn(ctx, code)
	}
	return domain.Promotion{}, &repoError{notFound: true}
}

func (s *stubPromotionRepo) List(ctx context.Context) ([]domain.Promotion, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubPromotionRepo) Delete(ctx context.Context, promotionID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, promotionID)
	}
	return nil
}

type stubUserRepo struct {
	insertFn      func(context.Context, domain.User) error
	updateFn      func(context.Context, domain.User) error
	findFn        func(context.Context, string) (domain.User, error)
	findByEmailFn func(context.Context, string) (domain.User, error)
	listFn        func(context.Context, int) ([]domain.User, error)
}

func (s *stubUserRepo) Insert(ctx context.Context, user domain.User) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) Update(ctx context.Context, user domain.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, userID)
	}
	return domain.User{}, &repoError{notFound: true}
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return domain.User{}, &repoError{notFound: true}
}

func (s *stubUserRepo) List(ctx context.Context, limit int) ([]domain.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit)
	}
	return nil, nil
}

type stubSettingsRepo struct {
	getFn  func(context.Context) (domain.StoreSettings, error)
	saveFn func(context.Context, domain.StoreSettings) error
}

func (s *stubSettingsRepo) Get(ctx context.Context) (domain.StoreSettings, error) {
	if s.getFn != nil {
		return s.getFn(ctx)
	}
	return domain.StoreSettings{}, &repoError{notFound: true}
}

func (s *stubSettingsRepo) Save(ctx context.Context, settings domain.StoreSettings) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, settings)
	}
	return nil
}

type stubGateway struct {
	createFn func(context.Context, payments.IntentRequest) (payments.Intent, error)
	verifyFn func(payments.Confirmation) error
}

func (s *stubGateway) CreateIntent(ctx context.Context, req payments.IntentRequest) (payments.Intent, error) {
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return payments.Intent{}, errors.New("not implemented")
}

func (s *stubGateway) VerifyConfirmation(conf payments.Confirmation) error {
	if s.verifyFn != nil {
		return s.verifyFn(conf)
	}
	return nil
}

type capturedEvents struct {
	events []OrderEvent
	err    error
}

func (c *capturedEvents) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) last() (OrderEvent, error) {
	if len(c.events) == 0 {
		return OrderEvent{}, fmt.Errorf("no events published")
	}
	return c.events[len(c.events)-1], nil
}
