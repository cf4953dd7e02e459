package models

import "time"

const SettingHomepageBanners = "homepage_banners"

// Setting is a generic key/value record.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     RawJSON   `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
