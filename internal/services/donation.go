package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/platform/apierr"
	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/repos"
	"github.com/yungbote/givebridge-backend/internal/requestdata"
	"github.com/yungbote/givebridge-backend/internal/types"
)

// Public campaign listings are capped; campaign pages only ever show the
// most recent donations.
const campaignDonationsLimit = 50

type CreateDonationInput struct {
	Amount      float64
	CampaignID  uuid.UUID
	Message     string
	IsAnonymous bool
}

type DonationService interface {
	// Create validates the target campaign, persists the donation and
	// increments the campaign total in one transaction, then dispatches the
	// thank-you email and feed event. Returns the donation with donor and
	// campaign references resolved.
	Create(ctx context.Context, in CreateDonationInput) (*types.DonationView, error)

	// ListMine returns the acting user's donations, newest first. Unbounded;
	// donors with very long histories get the whole list.
	ListMine(ctx context.Context) ([]*types.DonationView, error)

	// Get returns a single donation to its owner or an admin.
	Get(ctx context.Context, donationID uuid.UUID) (*types.DonationView, error)

	// ListForCampaign is the public campaign-page feed: completed donations
	// only, newest first, capped, anonymous donors masked.
	ListForCampaign(ctx context.Context, campaignID uuid.UUID) ([]*types.DonationView, error)

	// Delete removes a donation, reversing its effect on the campaign total
	// when the donation was completed. Admin-only; enforced at the router.
	Delete(ctx context.Context, donationID uuid.UUID) error
}

type donationService struct {
	db           *gorm.DB
	log          *logger.Logger
	donationRepo repos.DonationRepo
	campaignRepo repos.CampaignRepo
	userRepo     repos.UserRepo
	mailer       Mailer
	feed         DonationFeed
}

func NewDonationService(db *gorm.DB, log *logger.Logger, donationRepo repos.DonationRepo, campaignRepo repos.CampaignRepo, userRepo repos.UserRepo, mailer Mailer, feed DonationFeed) DonationService {
	serviceLog := log.With("service", "DonationService")
	return &donationService{
		db:           db,
		log:          serviceLog,
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		mailer:       mailer,
		feed:         feed,
	}
}

func (ds *donationService) Create(ctx context.Context, in CreateDonationInput) (*types.DonationView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}
	if in.Amount <= 0 {
		return nil, apierr.BadRequest("Donation amount must be positive")
	}
	if in.CampaignID == uuid.Nil {
		return nil, apierr.BadRequest("Campaign is required")
	}

	var view *types.DonationView
	if err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := ds.campaignRepo.GetByID(ctx, tx, in.CampaignID)
		if err != nil {
			return fmt.Errorf("fetching campaign: %w", err)
		}
		if campaign == nil {
			return apierr.NotFound("Campaign not found")
		}
		if campaign.Status != types.CampaignStatusActive {
			return apierr.InvalidState("Campaign is not active")
		}

		donation := &types.Donation{
			ID:          uuid.New(),
			Amount:      in.Amount,
			CampaignID:  campaign.ID,
			DonorID:     rd.UserID,
			Message:     in.Message,
			IsAnonymous: in.IsAnonymous,
			Status:      types.DonationStatusCompleted,
		}
		if _, err := ds.donationRepo.Create(ctx, tx, []*types.Donation{donation}); err != nil {
			return fmt.Errorf("persisting donation: %w", err)
		}

		// The paired increment. Rolls the insert back when it cannot land,
		// so a completed donation is never persisted without being counted.
		rows, err := ds.campaignRepo.AdjustCurrentAmount(ctx, tx, campaign.ID, donation.Amount)
		if err != nil {
			return fmt.Errorf("adjusting campaign total: %w", err)
		}
		if rows == 0 {
			return apierr.NotFound("Campaign not found")
		}

		donor, err := ds.userRepo.GetByID(ctx, tx, rd.UserID)
		if err != nil {
			return fmt.Errorf("fetching donor: %w", err)
		}

		view = &types.DonationView{
			ID:          donation.ID,
			Amount:      donation.Amount,
			Message:     donation.Message,
			IsAnonymous: donation.IsAnonymous,
			Status:      donation.Status,
			Donor:       donorRef(donor, rd),
			Campaign:    &types.CampaignRef{Title: campaign.Title},
			CreatedAt:   donation.CreatedAt,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ds.dispatchAfterCreate(in.CampaignID, view)
	return view, nil
}

// dispatchAfterCreate runs the best-effort side effects once the donation is
// durably written. Neither the email nor the feed can fail the request.
func (ds *donationService) dispatchAfterCreate(campaignID uuid.UUID, view *types.DonationView) {
	if view == nil {
		return
	}

	if ds.feed != nil {
		ds.feed.DonationCreated(campaignID, publicDonationView(view))
	}

	if ds.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), NotifyTimeout)
		defer cancel()
		if err := ds.mailer.SendDonationThanks(ctx, view); err != nil {
			ds.log.Warn("Failed to send donation thank-you email",
				"donation_id", view.ID,
				"error", err,
			)
		}
	}()
}

func (ds *donationService) ListMine(ctx context.Context) ([]*types.DonationView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}

	donations, err := ds.donationRepo.ListByDonor(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}

	campaignIDs := make([]uuid.UUID, 0, len(donations))
	seen := make(map[uuid.UUID]bool, len(donations))
	for _, d := range donations {
		if !seen[d.CampaignID] {
			seen[d.CampaignID] = true
			campaignIDs = append(campaignIDs, d.CampaignID)
		}
	}
	campaigns, err := ds.campaignRepo.GetByIDs(ctx, nil, campaignIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching campaigns: %w", err)
	}
	campaignsByID := make(map[uuid.UUID]*types.Campaign, len(campaigns))
	for _, c := range campaigns {
		campaignsByID[c.ID] = c
	}

	views := make([]*types.DonationView, 0, len(donations))
	for _, d := range donations {
		view := &types.DonationView{
			ID:          d.ID,
			Amount:      d.Amount,
			Message:     d.Message,
			IsAnonymous: d.IsAnonymous,
			Status:      d.Status,
			Donor:       types.DonorRef{Username: rd.Username, Email: rd.Email},
			CreatedAt:   d.CreatedAt,
		}
		if c := campaignsByID[d.CampaignID]; c != nil {
			view.Campaign = &types.CampaignRef{
				Title:      c.Title,
				Category:   c.Category,
				GoalAmount: c.GoalAmount,
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (ds *donationService) Get(ctx context.Context, donationID uuid.UUID) (*types.DonationView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized")
	}

	donation, err := ds.donationRepo.GetByID(ctx, nil, donationID)
	if err != nil {
		return nil, fmt.Errorf("fetching donation: %w", err)
	}
	if donation == nil {
		return nil, apierr.NotFound("Donation not found")
	}

	if donation.DonorID != rd.UserID && !rd.IsAdmin() {
		return nil, apierr.Forbidden("Not authorized to view this donation")
	}

	donor, err := ds.userRepo.GetByID(ctx, nil, donation.DonorID)
	if err != nil {
		return nil, fmt.Errorf("fetching donor: %w", err)
	}
	campaign, err := ds.campaignRepo.GetByID(ctx, nil, donation.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("fetching campaign: %w", err)
	}

	view := &types.DonationView{
		ID:          donation.ID,
		Amount:      donation.Amount,
		Message:     donation.Message,
		IsAnonymous: donation.IsAnonymous,
		Status:      donation.Status,
		Donor:       donorRef(donor, nil),
		CreatedAt:   donation.CreatedAt,
	}
	if campaign != nil {
		view.Campaign = &types.CampaignRef{
			Title:       campaign.Title,
			Description: campaign.Description,
			GoalAmount:  campaign.GoalAmount,
		}
	}
	return view, nil
}

func (ds *donationService) ListForCampaign(ctx context.Context, campaignID uuid.UUID) ([]*types.DonationView, error) {
	donations, err := ds.donationRepo.ListCompletedByCampaign(ctx, nil, campaignID, campaignDonationsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing campaign donations: %w", err)
	}

	donorIDs := make([]uuid.UUID, 0, len(donations))
	seen := make(map[uuid.UUID]bool, len(donations))
	for _, d := range donations {
		if d.IsAnonymous {
			continue
		}
		if !seen[d.DonorID] {
			seen[d.DonorID] = true
			donorIDs = append(donorIDs, d.DonorID)
		}
	}
	donors, err := ds.userRepo.GetByIDs(ctx, nil, donorIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching donors: %w", err)
	}
	donorsByID := make(map[uuid.UUID]*types.User, len(donors))
	for _, u := range donors {
		donorsByID[u.ID] = u
	}

	views := make([]*types.DonationView, 0, len(donations))
	for _, d := range donations {
		view := &types.DonationView{
			ID:          d.ID,
			Amount:      d.Amount,
			Message:     d.Message,
			IsAnonymous: d.IsAnonymous,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
		}
		if d.IsAnonymous {
			view.Donor = types.DonorRef{Username: types.AnonymousDonorName}
		} else if u := donorsByID[d.DonorID]; u != nil {
			view.Donor = types.DonorRef{Username: u.Username}
		}
		views = append(views, view)
	}
	return views, nil
}

func (ds *donationService) Delete(ctx context.Context, donationID uuid.UUID) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status read shares the transaction with the decrement so the
		// compensating pairing cannot straddle a concurrent status change.
		donation, err := ds.donationRepo.GetByID(ctx, tx, donationID)
		if err != nil {
			return fmt.Errorf("fetching donation: %w", err)
		}
		if donation == nil {
			return apierr.NotFound("Donation not found")
		}

		// Compensating update: only completed donations were ever counted,
		// so only they are ever subtracted. A vanished campaign is a no-op.
		if donation.Status == types.DonationStatusCompleted {
			if _, err := ds.campaignRepo.AdjustCurrentAmount(ctx, tx, donation.CampaignID, -donation.Amount); err != nil {
				return fmt.Errorf("reversing campaign total: %w", err)
			}
		}
		rows, err := ds.donationRepo.DeleteByID(ctx, tx, donation.ID)
		if err != nil {
			return fmt.Errorf("deleting donation: %w", err)
		}
		if rows == 0 {
			return apierr.NotFound("Donation not found")
		}
		return nil
	})
}

// publicDonationView re-projects a freshly created donation for public
// consumers (the live feed): anonymous donors masked, emails never exposed.
func publicDonationView(view *types.DonationView) *types.DonationView {
	if view == nil {
		return nil
	}
	out := *view
	out.Campaign = nil
	if out.IsAnonymous {
		out.Donor = types.DonorRef{Username: types.AnonymousDonorName}
	} else {
		out.Donor = types.DonorRef{Username: view.Donor.Username}
	}
	return &out
}

func donorRef(u *types.User, rd *requestdata.RequestData) types.DonorRef {
	if u != nil {
		return types.DonorRef{Username: u.Username, Email: u.Email}
	}
	if rd != nil {
		return types.DonorRef{Username: rd.Username, Email: rd.Email}
	}
	return types.DonorRef{}
}
