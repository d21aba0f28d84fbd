package model

import (
	"time"

	"gorm.io/datatypes"
)

// Business is the identity record of a listed business. Everything else
// (locations, hours, links, images, feature proposals) hangs off its ID.
type Business struct {
	ID         uint              `gorm:"primarykey" json:"id"`
	Name       string            `gorm:"not null" json:"name"`
	CategoryID *uint             `gorm:"index" json:"category_id"`
	Category   *Category         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Verified   bool              `gorm:"not null;default:false;index" json:"verified"`
	Details    datatypes.JSONMap `json:"details,omitempty"` // free-form attributes, "description" is surfaced in listings

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// Description returns details.description when it is a string.
func (b *Business) Description() string {
	if b.Details == nil {
		return ""
	}
	if s, ok := b.Details["description"].(string); ok {
		return s
	}
	return ""
}
