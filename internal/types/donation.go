package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DonationStatusPending   = "pending"
	DonationStatusCompleted = "completed"
	DonationStatusRefunded  = "refunded"
)

// Donation links a donor to a campaign. Invariant: a donation's amount has
// been added to its campaign's current_amount if and only if the donation
// is in completed status.
type Donation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Amount      float64        `gorm:"not null;column:amount" json:"amount"`
	CampaignID  uuid.UUID      `gorm:"type:uuid;not null;index;column:campaign_id" json:"campaign_id"`
	DonorID     uuid.UUID      `gorm:"type:uuid;not null;index;column:donor_id" json:"donor_id"`
	Message     string         `gorm:"column:message" json:"message,omitempty"`
	IsAnonymous bool           `gorm:"not null;default:false;column:is_anonymous" json:"is_anonymous"`
	Status      string         `gorm:"not null;default:'completed';column:status" json:"status"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Donation) TableName() string {
	return "donation"
}
