package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, username, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     role,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCampaign(tb testing.TB, ctx context.Context, db *gorm.DB, ownerID uuid.UUID, status string, currentAmount float64) *types.Campaign {
	tb.Helper()
	c := &types.Campaign{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         "Clean Water",
		Description:   "Wells for remote villages",
		Category:      "health",
		GoalAmount:    10000,
		CurrentAmount: currentAmount,
		Status:        status,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed campaign: %v", err)
	}
	return c
}

func SeedDonation(tb testing.TB, ctx context.Context, db *gorm.DB, campaignID, donorID uuid.UUID, amount float64, status string, createdAt time.Time) *types.Donation {
	tb.Helper()
	d := &types.Donation{
		ID:         uuid.New(),
		Amount:     amount,
		CampaignID: campaignID,
		DonorID:    donorID,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed donation: %v", err)
	}
	return d
}
