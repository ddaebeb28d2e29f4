package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/repositories"
)

const promotionIDPrefix = "pro_"

var (
	// ErrPromotionInvalidInput signals the caller provided invalid promotion data.
	ErrPromotionInvalidInput = errors.New("promotion: invalid input")
	// ErrPromotionNotFound covers absent, inactive, and out-of-window codes alike,
	// so callers cannot probe which codes exist.
	ErrPromotionNotFound = errors.New("promotion: not found")
	// ErrPromotionMinimumNotMet indicates the order amount is below the promotion threshold.
	ErrPromotionMinimumNotMet = errors.New("promotion: minimum order amount not met")
	// ErrPromotionConflict indicates a duplicate promotion ID or a lost concurrent update.
	ErrPromotionConflict = errors.New("promotion: conflict")
)

// PromotionServiceDeps bundles collaborators required to construct the promotion service.
type PromotionServiceDeps struct {
	Promotions  repositories.PromotionRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type promotionService struct {
	repo  repositories.PromotionRepository
	clock func() time.Time
	newID func() string
}

// NewPromotionService wires dependencies into a concrete PromotionService implementation.
func NewPromotionService(deps PromotionServiceDeps) (PromotionService, error) {
	if deps.Promotions == nil {
		return nil, errors.New("promotion service: promotion repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return promotionIDPrefix + ulid.Make().String() }
	}
	return &promotionService{
		repo:  deps.Promotions,
		clock: func() time.Time { return clock().UTC() },
		newID: newID,
	}, nil
}

func (s *promotionService) Validate(ctx context.Context, code string, orderAmount int64) (PromotionQuote, error) {
	normalised := strings.ToUpper(strings.TrimSpace(code))
	if normalised == "" {
		return PromotionQuote{}, fmt.Errorf("%w: promotion code is required", ErrPromotionInvalidInput)
	}
	if orderAmount < 0 {
		return PromotionQuote{}, fmt.Errorf("%w: order amount must not be negative", ErrPromotionInvalidInput)
	}

	promotion, err := s.repo.FindByCode(ctx, normalised)
	if err != nil {
		return PromotionQuote{}, s.mapRepositoryError(err)
	}

	now := s.clock()
	if !promotion.Active {
		return PromotionQuote{}, fmt.Errorf("%w: %s", ErrPromotionNotFound, normalised)
	}
	if !promotion.StartsAt.IsZero() && now.Before(promotion.StartsAt) {
		return PromotionQuote{}, fmt.Errorf("%w: %s", ErrPromotionNotFound, normalised)
	}
	if !promotion.EndsAt.IsZero() && now.After(promotion.EndsAt) {
		return PromotionQuote{}, fmt.Errorf("%w: %s", ErrPromotionNotFound, normalised)
	}
	if orderAmount < promotion.MinOrderAmount {
		return PromotionQuote{}, fmt.Errorf("%w: requires at least %d", ErrPromotionMinimumNotMet, promotion.MinOrderAmount)
	}

	discount := DiscountFor(&promotion, orderAmount)
	final := orderAmount - discount
	if final < 0 {
		final = 0
	}

	return PromotionQuote{
		Promotion:      promotion,
		OriginalAmount: orderAmount,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

func (s *promotionService) Create(ctx context.Context, cmd UpsertPromotionCommand) (domain.Promotion, error) {
	promotion, err := s.fromCommand(cmd)
	if err != nil {
		return domain.Promotion{}, err
	}

	now := s.clock()
	promotion.ID = s.newID()
	promotion.CreatedAt = now
	promotion.UpdatedAt = now

	if err := s.repo.Insert(ctx, promotion); err != nil {
		return domain.Promotion{}, s.mapRepositoryError(err)
	}
	return promotion, nil
}

func (s *promotionService) Update(ctx context.Context, cmd UpsertPromotionCommand) (domain.Promotion, error) {
	promotionID := strings.TrimSpace(cmd.PromotionID)
	if promotionID == "" {
		return domain.Promotion{}, fmt.Errorf("%w: promotion id is required", ErrPromotionInvalidInput)
	}

	existing, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return domain.Promotion{}, s.mapRepositoryError(err)
	}

	promotion, err := s.fromCommand(cmd)
	if err != nil {
		return domain.Promotion{}, err
	}
	promotion.ID = existing.ID
	promotion.CreatedAt = existing.CreatedAt
	promotion.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, promotion); err != nil {
		return domain.Promotion{}, s.mapRepositoryError(err)
	}
	return promotion, nil
}

func (s *promotionService) Get(ctx context.Context, promotionID string) (domain.Promotion, error) {
	if strings.TrimSpace(promotionID) == "" {
		return domain.Promotion{}, fmt.Errorf("%w: promotion id is required", ErrPromotionInvalidInput)
	}
	promotion, err := s.repo.FindByID(ctx, promotionID)
	if err != nil {
		return domain.Promotion{}, s.mapRepositoryError(err)
	}
	return promotion, nil
}

func (s *promotionService) List(ctx context.Context) ([]domain.Promotion, error) {
	promotions, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return promotions, nil
}

func (s *promotionService) Delete(ctx context.Context, promotionID string) error {
	if strings.TrimSpace(promotionID) == "" {
		return fmt.Errorf("%w: promotion id is required", ErrPromotionInvalidInput)
	}
	if err := s.repo.Delete(ctx, promotionID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func (s *promotionService) fromCommand(cmd UpsertPromotionCommand) (domain.Promotion, error) {
	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if code == "" {
		return domain.Promotion{}, fmt.Errorf("%w: promotion code is required", ErrPromotionInvalidInput)
	}
	if cmd.DiscountPercent < 0 || cmd.DiscountPercent > 100 {
		return domain.Promotion{}, fmt.Errorf("%w: discount percent must be between 0 and 100", ErrPromotionInvalidInput)
	}
	if cmd.DiscountAmount < 0 {
		return domain.Promotion{}, fmt.Errorf("%w: discount amount must not be negative", ErrPromotionInvalidInput)
	}
	if cmd.DiscountPercent == 0 && cmd.DiscountAmount == 0 {
		return domain.Promotion{}, fmt.Errorf("%w: either a percent or a flat discount is required", ErrPromotionInvalidInput)
	}
	if cmd.MinOrderAmount < 0 {
		return domain.Promotion{}, fmt.Errorf("%w: minimum order amount must not be negative", ErrPromotionInvalidInput)
	}
	if !cmd.StartsAt.IsZero() && !cmd.EndsAt.IsZero() && cmd.EndsAt.Before(cmd.StartsAt) {
		return domain.Promotion{}, fmt.Errorf("%w: promotion window ends before it starts", ErrPromotionInvalidInput)
	}

	return domain.Promotion{
		Code:            code,
		Description:     strings.TrimSpace(cmd.Description),
		DiscountPercent: cmd.DiscountPercent,
		DiscountAmount:  cmd.DiscountAmount,
		MinOrderAmount:  cmd.MinOrderAmount,
		StartsAt:        cmd.StartsAt.UTC(),
		EndsAt:          cmd.EndsAt.UTC(),
		Active:          cmd.Active,
	}, nil
}

func (s *promotionService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrPromotionNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrPromotionConflict, err)
		}
	}
	return err
}
