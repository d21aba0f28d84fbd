package model

import "time"

// OpeningHours is one weekday of a location's schedule. Either both times are
// set and IsClosed is false, or both are nil and IsClosed is true.
type OpeningHours struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	LocationID uint      `gorm:"not null;uniqueIndex:idx_opening_hours_location_day,priority:1" json:"location_id"`
	Location   *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	DayOfWeek  int       `gorm:"not null;uniqueIndex:idx_opening_hours_location_day,priority:2;check:chk_opening_hours_day,day_of_week BETWEEN 0 AND 6" json:"day_of_week"` // 0 = Sunday
	OpenTime   *string   `gorm:"type:varchar(8)" json:"open_time"`                                                                                                         // HH:MM:SS
	CloseTime  *string   `gorm:"type:varchar(8)" json:"close_time"`
	IsClosed   bool      `gorm:"not null;default:false" json:"is_closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OpeningHours) TableName() string {
	return "opening_hours"
}
