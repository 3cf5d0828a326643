package types

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousDonorName replaces the donor projection on anonymous donations
// in public listings.
const AnonymousDonorName = "Anonymous"

// DonorRef is the display projection of a donation's donor. Only the fields
// a given read path is allowed to expose are populated.
type DonorRef struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// CampaignRef is the display projection of a donation's campaign.
type CampaignRef struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	GoalAmount  float64 `json:"goal_amount,omitempty"`
}

// DonationView is the denormalized response shape: the stored record with
// its references resolved, never the bare foreign keys.
type DonationView struct {
	ID          uuid.UUID    `json:"id"`
	Amount      float64      `json:"amount"`
	Message     string       `json:"message,omitempty"`
	IsAnonymous bool         `json:"is_anonymous"`
	Status      string       `json:"status"`
	Donor       DonorRef     `json:"donor"`
	Campaign    *CampaignRef `json:"campaign,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
