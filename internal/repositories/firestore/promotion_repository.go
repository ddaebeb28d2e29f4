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

const promotionCollection = "promotions"

// PromotionRepository persists promotion definitions in Firestore. Codes are
// stored upper-cased so lookups are case insensitive.
type PromotionRepository struct {
	base *pfirestore.BaseRepository[promotionDocument]
}

// NewPromotionRepository constructs a Firestore-backed promotion repository.
func NewPromotionRepository(provider *pfirestore.Provider) (*PromotionRepository, error) {
	if provider == nil {
		return nil, errors.New("promotion repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[promotionDocument](provider, promotionCollection, nil, nil)
	return &PromotionRepository{base: base}, nil
}

// Insert creates the promotion document, failing with a conflict when the ID already exists.
func (r *PromotionRepository) Insert(ctx context.Context, promotion domain.Promotion) error {
	if r == nil || r.base == nil {
		return errors.New("promotion repository not initialised")
	}
	if strings.TrimSpace(promotion.ID) == "" {
		return errors.New("promotion repository: promotion id is required")
	}
	if normalisePromotionCode(promotion.Code) == "" {
		return errors.New("promotion repository: promotion code is required")
	}

	ref, err := r.base.DocumentRef(ctx, promotion.ID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, fromDomainPromotion(promotion)); err != nil {
		return pfirestore.WrapError("promotions.insert", err)
	}
	return nil
}

// Update replaces the stored promotion document.
func (r *PromotionRepository) Update(ctx context.Context, promotion domain.Promotion) error {
	if r == nil || r.base == nil {
		return errors.New("promotion repository not initialised")
	}
	if strings.TrimSpace(promotion.ID) == "" {
		return errors.New("promotion repository: promotion id is required")
	}

	_, err := r.base.Set(ctx, promotion.ID, fromDomainPromotion(promotion))
	return err
}

// FindByID loads a promotion by document ID.
func (r *PromotionRepository) FindByID(ctx context.Context, promotionID string) (domain.Promotion, error) {
	if r == nil || r.base == nil {
		return domain.Promotion{}, errors.New("promotion repository not initialised")
	}
	if strings.TrimSpace(promotionID) == "" {
		return domain.Promotion{}, errors.New("promotion repository: promotion id is required")
	}

	doc, err := r.base.Get(ctx, promotionID)
	if err != nil {
		return domain.Promotion{}, err
	}
	return toDomainPromotion(doc.ID, doc.Data), nil
}

// FindByCode loads a promotion by its customer-facing code.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (domain.Promotion, error) {
	if r == nil || r.base == nil {
		return domain.Promotion{}, errors.New("promotion repository not initialised")
	}
	normalised := normalisePromotionCode(code)
	if normalised == "" {
		return domain.Promotion{}, errors.New("promotion repository: promotion code is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("code", "==", normalised).Limit(1)
	})
	if err != nil {
		return domain.Promotion{}, err
	}
	if len(docs) == 0 {
		return domain.Promotion{}, pfirestore.NewNotFoundError("promotions.find_by_code", fmt.Errorf("promotion %s not found", normalised))
	}
	return toDomainPromotion(docs[0].ID, docs[0].Data), nil
}

// List returns every promotion definition, newest first.
func (r *PromotionRepository) List(ctx context.Context) ([]domain.Promotion, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("promotion repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.OrderBy("created_at", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	promotions := make([]domain.Promotion, 0, len(docs))
	for _, doc := range docs {
		promotions = append(promotions, toDomainPromotion(doc.ID, doc.Data))
	}
	return promotions, nil
}

// Delete removes the promotion document.
func (r *PromotionRepository) Delete(ctx context.Context, promotionID string) error {
	if r == nil || r.base == nil {
		return errors.New("promotion repository not initialised")
	}
	if strings.TrimSpace(promotionID) == "" {
		return errors.New("promotion repository: promotion id is required")
	}
	return r.base.Delete(ctx, promotionID)
}
