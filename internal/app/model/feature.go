package model

import "time"

// Feature is a catalog entry ("Wheelchair access", "Dog friendly"), not tied
// to any business.
type Feature struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Icon        *string `json:"icon"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Feature) TableName() string {
	return "features"
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// FeatureProposal claims that a business has a feature. Only approved
// proposals are shown in listings; approval happens elsewhere.
type FeatureProposal struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	BusinessID uint           `gorm:"not null;index" json:"business_id"`
	Business   *Business      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FeatureID  uint           `gorm:"not null;index" json:"feature_id"`
	Feature    *Feature       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"feature,omitempty"`
	Score      *float64       `json:"score"`
	Status     ProposalStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FeatureProposal) TableName() string {
	return "feature_proposals"
}
