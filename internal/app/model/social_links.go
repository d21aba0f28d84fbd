package model

import "time"

// SocialLinks holds at most one row per business.
type SocialLinks struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	BusinessID   uint      `gorm:"not null;uniqueIndex" json:"business_id"`
	Business     *Business `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Website      *string   `json:"website"`
	FacebookURL  *string   `json:"facebook_url"`
	InstagramURL *string   `json:"instagram_url"`
	XURL         *string   `gorm:"column:x_url" json:"x_url"`
	TikTokURL    *string   `gorm:"column:tiktok_url" json:"tiktok_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SocialLinks) TableName() string {
	return "social_links"
}

// IsEmpty reports whether every link is nil or blank.
func (s *SocialLinks) IsEmpty() bool {
	for _, v := range []*string{s.Website, s.FacebookURL, s.InstagramURL, s.XURL, s.TikTokURL} {
		if v != nil && *v != "" {
			return false
		}
	}
	return true
}
