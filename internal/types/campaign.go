package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusClosed    = "closed"
	CampaignStatusCompleted = "completed"
)

// Campaign carries a cached running total of its completed donations.
// CurrentAmount is only ever touched through CampaignRepo.AdjustCurrentAmount
// so the increment/decrement pairing stays auditable in one place.
type Campaign struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Title         string    `gorm:"not null;column:title" json:"title"`
	Description   string    `gorm:"column:description" json:"description"`
	Category      string    `gorm:"column:category" json:"category"`
	GoalAmount    float64   `gorm:"not null;column:goal_amount" json:"goal_amount"`
	CurrentAmount float64   `gorm:"not null;default:0;column:current_amount" json:"current_amount"`
	Status        string    `gorm:"not null;default:'draft';column:status" json:"status"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaign"
}

func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusClosed, CampaignStatusCompleted:
		return true
	default:
		return false
	}
}
