package model

import "time"

const (
	ImageTypeLogo  = "logo"
	LogoImageIndex = 0
)

// BusinessImage is addressed by (business, type, index); the logo is
// ("logo", 0).
type BusinessImage struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BusinessID uint      `gorm:"not null;uniqueIndex:idx_business_images_slot,priority:1" json:"business_id"`
	Business   *Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ImageType  string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_business_images_slot,priority:2" json:"image_type"`
	ImageIndex int       `gorm:"not null;uniqueIndex:idx_business_images_slot,priority:3" json:"image_index"`
	URL        string    `gorm:"type:text;not null" json:"url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BusinessImage) TableName() string {
	return "business_images"
}
