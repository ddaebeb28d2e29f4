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

// ErrSettingsInvalidInput signals the caller provided invalid settings data.
var ErrSettingsInvalidInput = errors.New("settings: invalid input")

// SettingsServiceDeps bundles collaborators required to construct the settings service.
type SettingsServiceDeps struct {
	Settings repositories.SettingsRepository
	Clock    func() time.Time
}

type settingsService struct {
	settings repositories.SettingsRepository
	clock    func() time.Time
}

// NewSettingsService wires dependencies into a concrete SettingsService implementation.
func NewSettingsService(deps SettingsServiceDeps) (SettingsService, error) {
	if deps.Settings == nil {
		return nil, errors.New("settings service: settings repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &settingsService{
		settings: deps.Settings,
		clock:    func() time.Time { return clock().UTC() },
	}, nil
}

// Get returns the stored settings, or sensible defaults when none were saved yet.
func (s *settingsService) Get(ctx context.Context) (domain.StoreSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return domain.StoreSettings{StoreName: "Manira"}, nil
		}
		return domain.StoreSettings{}, err
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, cmd UpdateSettingsCommand) (domain.StoreSettings, error) {
	storeName := strings.TrimSpace(cmd.StoreName)
	if storeName == "" {
		return domain.StoreSettings{}, fmt.Errorf("%w: store name is required", ErrSettingsInvalidInput)
	}

	settings := domain.StoreSettings{
		StoreName:       storeName,
		ContactEmail:    strings.TrimSpace(cmd.ContactEmail),
		ContactPhone:    strings.TrimSpace(cmd.ContactPhone),
		SupportAddress:  strings.TrimSpace(cmd.SupportAddress),
		AnnouncementBar: strings.TrimSpace(cmd.AnnouncementBar),
		Categories:      cmd.Categories,
		UpdatedAt:       s.clock(),
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return domain.StoreSettings{}, err
	}
	return settings, nil
}
