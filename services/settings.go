package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"woolcrafts-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the stored JSON value for key, or fallback when the key is unset.
func (s *SettingsService) Get(ctx context.Context, key string, fallback json.RawMessage) (json.RawMessage, error) {
	var setting models.Setting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if isNotFound(err) {
			return fallback, nil
		}
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	if len(setting.Value) == 0 {
		return fallback, nil
	}
	return json.RawMessage(setting.Value), nil
}

func (s *SettingsService) Set(ctx context.Context, key string, value json.RawMessage) error {
	setting := models.Setting{Key: key, Value: models.RawJSON(value)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) GetBanners(ctx context.Context) (json.RawMessage, error) {
	return s.Get(ctx, models.SettingHomepageBanners, json.RawMessage("[]"))
}

// SaveBanners replaces the homepage banner list and returns the image URLs the
// previous list referenced that the new one no longer does. The value must be a
// JSON array.
func (s *SettingsService) SaveBanners(ctx context.Context, banners json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(banners)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		return nil, newError(InvalidInput, "Banners must be a list")
	}

	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := &SettingsService{db: tx}
		previous, err := txs.Get(ctx, models.SettingHomepageBanners, nil)
		if err != nil {
			return err
		}
		if err := txs.Set(ctx, models.SettingHomepageBanners, json.RawMessage(trimmed)); err != nil {
			return err
		}

		kept := map[string]bool{}
		for _, u := range bannerImages(trimmed) {
			kept[u] = true
		}
		for _, u := range bannerImages(previous) {
			if !kept[u] {
				removed = append(removed, u)
				kept[u] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// bannerImages lists the image URLs of a banner list. Entries are either bare URL
// strings or objects with an "image" field.
func bannerImages(list json.RawMessage) []string {
	var entries []json.RawMessage
	if len(list) == 0 || json.Unmarshal(list, &entries) != nil {
		return nil
	}

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		var url string
		if json.Unmarshal(e, &url) != nil {
			var obj struct {
				Image string `json:"image"`
			}
			if json.Unmarshal(e, &obj) != nil {
				continue
			}
			url = obj.Image
		}
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
