package firestore

import (
	"context"
	"errors"

	domain "github.com/manira/api/internal/domain"
	pfirestore "github.com/manira/api/internal/platform/firestore"
)

const (
	settingsCollection = "settings"
	settingsDocumentID = "storefront"
)

// SettingsRepository stores the storefront configuration as a single document.
type SettingsRepository struct {
	base *pfirestore.BaseRepository[settingsDocument]
}

// NewSettingsRepository constructs a Firestore-backed settings repository.
func NewSettingsRepository(provider *pfirestore.Provider) (*SettingsRepository, error) {
	if provider == nil {
		return nil, errors.New("settings repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[settingsDocument](provider, settingsCollection, nil, nil)
	return &SettingsRepository{base: base}, nil
}

// Get loads the storefront settings document.
func (r *SettingsRepository) Get(ctx context.Context) (domain.StoreSettings, error) {
	if r == nil || r.base == nil {
		return domain.StoreSettings{}, errors.New("settings repository not initialised")
	}

	doc, err := r.base.Get(ctx, settingsDocumentID)
	if err != nil {
		return domain.StoreSettings{}, err
	}
	return toDomainSettings(doc.Data), nil
}

// Save replaces the storefront settings document.
func (r *SettingsRepository) Save(ctx context.Context, settings domain.StoreSettings) error {
	if r == nil || r.base == nil {
		return errors.New("settings repository not initialised")
	}

	_, err := r.base.Set(ctx, settingsDocumentID, fromDomainSettings(settings))
	return err
}
