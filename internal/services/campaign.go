package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/platform/apierr"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/repos"
	"github.com/yungbote/givebridge-backend/internal/requestdata"
	"github.com/yungbote/givebridge-backend/internal/types"
)

type CreateCampaignInput struct {
	Title       string
	Description string
	Category    string
	GoalAmount  float64
}

type CampaignService interface {
	Create(ctx context.Context, in CreateCampaignInput) (*types.Campaign, error)
	List(ctx context.Context) ([]*types.Campaign, error)
	Get(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uuid.UUID, status string) (*types.Campaign, error)
}

type campaignService struct {
	db           *gorm.DB
	log          *logger.Logger
	campaignRepo repos.CampaignRepo
	feed         DonationFeed
}

func NewCampaignService(db *gorm.DB, log *logger.Logger, campaignRepo repos.CampaignRepo, feed DonationFeed) CampaignService {
	serviceLog := log.With("service", "CampaignService")
	return &campaignService{
		db:           db,
		log:          serviceLog,
		campaignRepo: campaignRepo,
		feed:         feed,
	}
}

func (cs *campaignService) Create(ctx context.Context, in CreateCampaignInput) (*types.Campaign, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apierr.BadRequest("Campaign title is required")
	}
	if in.GoalAmount <= 0 {
		return nil, apierr.BadRequest("Campaign goal amount must be positive")
	}

	campaign := &types.Campaign{
		ID:          uuid.New(),
		OwnerID:     rd.UserID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		GoalAmount:  in.GoalAmount,
		Status:      types.CampaignStatusDraft,
	}
	if _, err := cs.campaignRepo.Create(ctx, nil, []*types.Campaign{campaign}); err != nil {
		return nil, fmt.Errorf("persisting campaign: %w", err)
	}
	return campaign, nil
}

func (cs *campaignService) List(ctx context.Context) ([]*types.Campaign, error) {
	campaigns, err := cs.campaignRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return campaigns, nil
}

func (cs *campaignService) Get(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, error) {
	campaign, err := cs.campaignRepo.GetByID(ctx, nil, campaignID)
	if err != nil {
		return nil, fmt.Errorf("fetching campaign: %w", err)
	}
	if campaign == nil {
		return nil, apierr.NotFound("Campaign not found")
	}
	return campaign, nil
}

// Allowed status transitions. Closed and completed campaigns stay that way;
// reopening would let donations land on a total the owner already reported.
var campaignTransitions = map[string]map[string]bool{
	types.CampaignStatusDraft: {
		types.CampaignStatusActive: true,
	},
	types.CampaignStatusActive: {
		types.CampaignStatusClosed:    true,
		types.CampaignStatusCompleted: true,
	},
}

func (cs *campaignService) UpdateStatus(ctx context.Context, campaignID uuid.UUID, status string) (*types.Campaign, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !types.ValidCampaignStatus(status) {
		return nil, apierr.BadRequest("Invalid campaign status")
	}

	campaign, err := cs.campaignRepo.GetByID(ctx, nil, campaignID)
	if err != nil {
		return nil, fmt.Errorf("fetching campaign: %w", err)
	}
	if campaign == nil {
		return nil, apierr.NotFound("Campaign not found")
	}
	if campaign.OwnerID != rd.UserID && !rd.IsAdmin() {
		return nil, apierr.Forbidden("Not authorized to modify this campaign")
	}
	if !campaignTransitions[campaign.Status][status] {
		return nil, apierr.InvalidState(fmt.Sprintf("Cannot move campaign from %s to %s", campaign.Status, status))
	}

	rows, err := cs.campaignRepo.UpdateStatus(ctx, nil, campaign.ID, status)
	if err != nil {
		return nil, fmt.Errorf("updating campaign status: %w", err)
	}
	if rows == 0 {
		return nil, apierr.NotFound("Campaign not found")
	}
	campaign.Status = status

	if cs.feed != nil {
		cs.feed.CampaignStatusChanged(campaign.ID, status)
	}
	return campaign, nil
}
