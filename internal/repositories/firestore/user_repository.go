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

const userCollection = "users"

// UserRepository persists account records in Firestore.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[userDocument](provider, userCollection, nil, nil)
	return &UserRepository{base: base}, nil
}

// Insert creates the account document, failing with a conflict when the ID already exists.
func (r *UserRepository) Insert(ctx context.Context, user domain.User) error {
	if r == nil || r.base == nil {
		return errors.New("user repository not initialised")
	}
	if strings.TrimSpace(user.ID) == "" {
		return errors.New("user repository: user id is required")
	}
	if normaliseEmail(user.Email) == "" {
		return errors.New("user repository: email is required")
	}

	ref, err := r.base.DocumentRef(ctx, user.ID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, fromDomainUser(user)); err != nil {
		return pfirestore.WrapError("users.insert", err)
	}
	return nil
}

// Update replaces the stored account document.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	if r == nil || r.base == nil {
		return errors.New("user repository not initialised")
	}
	if strings.TrimSpace(user.ID) == "" {
		return errors.New("user repository: user id is required")
	}

	_, err := r.base.Set(ctx, user.ID, fromDomainUser(user))
	return err
}

// FindByID loads an account by document ID.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if r == nil || r.base == nil {
		return domain.User{}, errors.New("user repository not initialised")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.User{}, errors.New("user repository: user id is required")
	}

	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(doc.ID, doc.Data), nil
}

// FindByEmail loads an account by its normalised email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if r == nil || r.base == nil {
		return domain.User{}, errors.New("user repository not initialised")
	}
	normalised := normaliseEmail(email)
	if normalised == "" {
		return domain.User{}, errors.New("user repository: email is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("email", "==", normalised).Limit(1)
	})
	if err != nil {
		return domain.User{}, err
	}
	if len(docs) == 0 {
		return domain.User{}, pfirestore.NewNotFoundError("users.find_by_email", fmt.Errorf("user %s not found", normalised))
	}
	return toDomainUser(docs[0].ID, docs[0].Data), nil
}

// List returns accounts ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("user repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		query = query.OrderBy("created_at", firestore.Desc)
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, toDomainUser(doc.ID, doc.Data))
	}
	return users, nil
}
