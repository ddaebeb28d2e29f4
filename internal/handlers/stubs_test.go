package handlers

import (
	"context"

	"github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
	"github.com/manira/api/internal/services"
)

type stubOrderService struct {
	submitFunc func(ctx context.Context, cmd services.SubmitOrderCommand) (domain.Order, error)
	reviewFunc func(ctx context.Context, cmd services.ReviewOrderCommand) (domain.Order, error)
	cancelFunc func(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error)
	forceFunc  func(ctx context.Context, cmd services.ForcePaymentStateCommand) (domain.Order, error)
	getFunc    func(ctx context.Context, cmd services.GetOrderCommand) (domain.Order, error)
	listFunc   func(ctx context.Context, userID string) ([]domain.Order, error)
	listAll    func(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error)
	deleteFunc func(ctx context.Context, orderID string) error
}

func (s *stubOrderService) Submit(ctx context.Context, cmd services.SubmitOrderCommand) (domain.Order, error) {
	return s.submitFunc(ctx, cmd)
}

func (s *stubOrderService) Review(ctx context.Context, cmd services.ReviewOrderCommand) (domain.Order, error) {
	return s.reviewFunc(ctx, cmd)
}

func (s *stubOrderService) Cancel(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error) {
	return s.cancelFunc(ctx, cmd)
}

func (s *stubOrderService) ForcePaymentState(ctx context.Context, cmd services.ForcePaymentStateCommand) (domain.Order, error) {
	return s.forceFunc(ctx, cmd)
}

func (s *stubOrderService) Get(ctx context.Context, cmd services.GetOrderCommand) (domain.Order, error) {
	return s.getFunc(ctx, cmd)
}

func (s *stubOrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listFunc(ctx, userID)
}

func (s *stubOrderService) ListAll(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	return s.listAll(ctx, filter)
}

func (s *stubOrderService) Delete(ctx context.Context, orderID string) error {
	return s.deleteFunc(ctx, orderID)
}

type stubPaymentService struct {
	createFunc func(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error)
	verifyFunc func(ctx context.Context, cmd services.VerifyPaymentCommand) (domain.Order, error)
}

func (s *stubPaymentService) CreateIntent(ctx context.Context, cmd services.CreateIntentCommand) (services.PaymentIntent, error) {
	return s.createFunc(ctx, cmd)
}

func (s *stubPaymentService) VerifyPayment(ctx context.Context, cmd services.VerifyPaymentCommand) (domain.Order, error) {
	return s.verifyFunc(ctx, cmd)
}

type stubCatalogService struct {
	createFunc     func(ctx context.Context, cmd services.UpsertProductCommand) (domain.Product, error)
	updateFunc     func(ctx context.Context, cmd services.UpsertProductCommand) (domain.Product, error)
	getFunc        func(ctx context.Context, productID string) (domain.Product, error)
	listFunc       func(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error)
	categoriesFunc func(ctx context.Context) ([]string, error)
	deleteFunc     func(ctx context.Context, productID string) error
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, cmd services.UpsertProductCommand) (domain.Product, error) {
	return s.createFunc(ctx, cmd)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, cmd services.UpsertProductCommand) (domain.Product, error) {
	return s.updateFunc(ctx, cmd)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return s.getFunc(ctx, productID)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	return s.listFunc(ctx, filter)
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.categoriesFunc(ctx)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	return s.deleteFunc(ctx, productID)
}

type stubPromotionService struct {
	validateFunc func(ctx context.Context, code string, orderAmount int64) (services.PromotionQuote, error)
	createFunc   func(ctx context.Context, cmd services.UpsertPromotionCommand) (domain.Promotion, error)
	updateFunc   func(ctx context.Context, cmd services.UpsertPromotionCommand) (domain.Promotion, error)
	getFunc      func(ctx context.Context, promotionID string) (domain.Promotion, error)
	listFunc     func(ctx context.Context) ([]domain.Promotion, error)
	deleteFunc   func(ctx context.Context, promotionID string) error
}

func (s *stubPromotionService) Validate(ctx context.Context, code string, orderAmount int64) (services.PromotionQuote, error) {
	return s.validateFunc(ctx, code, orderAmount)
}

func (s *stubPromotionService) Create(ctx context.Context, cmd services.UpsertPromotionCommand) (domain.Promotion, error) {
	return s.createFunc(ctx, cmd)
}

func (s *stubPromotionService) Update(ctx context.Context, cmd services.UpsertPromotionCommand) (domain.Promotion, error) {
	return s.updateFunc(ctx, cmd)
}

func (s *stubPromotionService) Get(ctx context.Context, promotionID string) (domain.Promotion, error) {
	return s.getFunc(ctx, promotionID)
}

func (s *stubPromotionService) List(ctx context.Context) ([]domain.Promotion, error) {
	return s.listFunc(ctx)
}

func (s *stubPromotionService) Delete(ctx context.Context, promotionID string) error {
	return s.deleteFunc(ctx, promotionID)
}

type stubCartService struct {
	addFunc    func(ctx context.Context, cmd services.CartItemCommand) error
	updateFunc func(ctx context.Context, cmd services.CartItemCommand) error
	removeFunc func(ctx context.Context, userID, productID string) error
	getFunc    func(ctx context.Context, userID string) (services.Cart, error)
	clearFunc  func(ctx context.Context, userID string) error
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.CartItemCommand) error {
	return s.addFunc(ctx, cmd)
}

func (s *stubCartService) UpdateItem(ctx context.Context, cmd services.CartItemCommand) error {
	return s.updateFunc(ctx, cmd)
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.removeFunc(ctx, userID, productID)
}

func (s *stubCartService) GetCart(ctx context.Context, userID string) (services.Cart, error) {
	return s.getFunc(ctx, userID)
}

func (s *stubCartService) Clear(ctx context.Context, userID string) error {
	return s.clearFunc(ctx, userID)
}

type stubUserService struct {
	registerFunc func(ctx context.Context, cmd services.RegisterCommand) (services.AuthSession, error)
	loginFunc    func(ctx context.Context, cmd services.LoginCommand) (services.AuthSession, error)
	getFunc      func(ctx context.Context, userID string) (domain.User, error)
	updateFunc   func(ctx context.Context, cmd services.UpdateProfileCommand) (domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, cmd services.RegisterCommand) (services.AuthSession, error) {
	return s.registerFunc(ctx, cmd)
}

func (s *stubUserService) Login(ctx context.Context, cmd services.LoginCommand) (services.AuthSession, error) {
	return s.loginFunc(ctx, cmd)
}

func (s *stubUserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	return s.getFunc(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, cmd services.UpdateProfileCommand) (domain.User, error) {
	return s.updateFunc(ctx, cmd)
}

type stubSettingsService struct {
	getFunc    func(ctx context.Context) (domain.StoreSettings, error)
	updateFunc func(ctx context.Context, cmd services.UpdateSettingsCommand) (domain.StoreSettings, error)
}

func (s *stubSettingsService) Get(ctx context.Context) (domain.StoreSettings, error) {
	return s.getFunc(ctx)
}

func (s *stubSettingsService) Update(ctx context.Context, cmd services.UpdateSettingsCommand) (domain.StoreSettings, error) {
	return s.updateFunc(ctx, cmd)
}

var (
	_ services.OrderService     = (*stubOrderService)(nil)
	_ services.PaymentService   = (*stubPaymentService)(nil)
	_ services.CatalogService   = (*stubCatalogService)(nil)
	_ services.PromotionService = (*stubPromotionService)(nil)
	_ services.CartService      = (*stubCartService)(nil)
	_ services.UserService      = (*stubUserService)(nil)
	_ services.SettingsService  = (*stubSettingsService)(nil)
)
