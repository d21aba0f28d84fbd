package model

import "time"

// PrimaryLocationIndex marks the location used for map display and opening hours.
const PrimaryLocationIndex = 1

type Location struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	BusinessID    uint      `gorm:"not null;uniqueIndex:idx_locations_business_index,priority:1" json:"business_id"`
	Business      *Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Point         GeoPoint  `gorm:"not null" json:"-"`
	LocationIndex int       `gorm:"not null;uniqueIndex:idx_locations_business_index,priority:2" json:"location_index"`
	IsPublic      bool      `gorm:"not null" json:"is_public"`
	Name          *string   `json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}
