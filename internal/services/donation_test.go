package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/platform/apierr"
	"github.com/yungbote/givebridge-backend/internal/repos"
	"github.com/yungbote/givebridge-backend/internal/repos/testutil"
	"github.com/yungbote/givebridge-backend/internal/requestdata"
	"github.com/yungbote/givebridge-backend/internal/types"
)

type recordingMailer struct {
	err  error
	sent chan *types.DonationView
}

func newRecordingMailer(err error) *recordingMailer {
	return &recordingMailer{err: err, sent: make(chan *types.DonationView, 1)}
}

func (m *recordingMailer) SendDonationThanks(ctx context.Context, view *types.DonationView) error {
	select {
	case m.sent <- view:
	default:
	}
	return m.err
}

type recordingFeed struct {
	mu       sync.Mutex
	created  []*types.DonationView
	statuses []string
}

func (f *recordingFeed) DonationCreated(campaignID uuid.UUID, view *types.DonationView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, view)
}

func (f *recordingFeed) CampaignStatusChanged(campaignID uuid.UUID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *recordingFeed) lastCreated() *types.DonationView {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// failingAdjustRepo simulates the aggregate update failing after the
// donation insert succeeded.
type failingAdjustRepo struct {
	repos.CampaignRepo
}

func (r *failingAdjustRepo) AdjustCurrentAmount(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, delta float64) (int64, error) {
	return 0, errors.New("adjust failed")
}

type donationFixture struct {
	db           *gorm.DB
	service      DonationService
	donationRepo repos.DonationRepo
	campaignRepo repos.CampaignRepo
	userRepo     repos.UserRepo
	mailer       *recordingMailer
	feed         *recordingFeed
}

func newDonationFixture(t *testing.T, mailerErr error, wrapCampaignRepo func(repos.CampaignRepo) repos.CampaignRepo) *donationFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	donationRepo := repos.NewDonationRepo(db, log)
	campaignRepo := repos.NewCampaignRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)

	serviceCampaignRepo := campaignRepo
	if wrapCampaignRepo != nil {
		serviceCampaignRepo = wrapCampaignRepo(campaignRepo)
	}

	mailer := newRecordingMailer(mailerErr)
	feed := &recordingFeed{}
	service := NewDonationService(db, log, donationRepo, serviceCampaignRepo, userRepo, mailer, feed)

	return &donationFixture{
		db:           db,
		service:      service,
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		mailer:       mailer,
		feed:         feed,
	}
}

func ctxFor(u *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:   u.ID,
		Role:     u.Role,
		Username: u.Username,
		Email:    u.Email,
	})
}

func (fx *donationFixture) donationCount(t *testing.T, campaignID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := fx.db.Model(&types.Donation{}).Where("campaign_id = ?", campaignID).Count(&count).Error; err != nil {
		t.Fatalf("counting donations: %v", err)
	}
	return count
}

func (fx *donationFixture) campaignTotal(t *testing.T, campaignID uuid.UUID) float64 {
	t.Helper()
	c, err := fx.campaignRepo.GetByID(context.Background(), nil, campaignID)
	if err != nil || c == nil {
		t.Fatalf("fetching campaign: err=%v c=%v", err, c)
	}
	return c.CurrentAmount
}

func TestCreateDonationIncrementsCampaignTotal(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 100)

	view, err := fx.service.Create(ctxFor(donor), CreateDonationInput{
		Amount:     50,
		CampaignID: campaign.ID,
		Message:    "keep it up",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if view.Amount != 50 || view.Status != types.DonationStatusCompleted {
		t.Fatalf("unexpected view: amount=%v status=%s", view.Amount, view.Status)
	}
	if view.Donor.Username != "alice" || view.Donor.Email != "alice@example.com" {
		t.Fatalf("donor not resolved to projection: %+v", view.Donor)
	}
	if view.Campaign == nil || view.Campaign.Title != campaign.Title {
		t.Fatalf("campaign not resolved to projection: %+v", view.Campaign)
	}

	if got := fx.campaignTotal(t, campaign.ID); got != 150 {
		t.Fatalf("expected currentAmount 150 after donation, got %v", got)
	}

	stored, err := fx.donationRepo.GetByID(ctx, nil, view.ID)
	if err != nil || stored == nil {
		t.Fatalf("donation not persisted: err=%v", err)
	}
	if stored.DonorID != donor.ID || stored.CampaignID != campaign.ID {
		t.Fatalf("donation references wrong donor/campaign")
	}
}

func TestCreateDonationCampaignNotFound(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)

	missing := uuid.New()
	_, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: 25, CampaignID: missing})
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err.Error() != "Campaign not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if got := fx.donationCount(t, missing); got != 0 {
		t.Fatalf("expected no donation persisted, found %d", got)
	}
}

func TestCreateDonationCampaignNotActive(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)

	for _, status := range []string{types.CampaignStatusDraft, types.CampaignStatusClosed, types.CampaignStatusCompleted} {
		campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, status, 100)

		_, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: 25, CampaignID: campaign.ID})
		if !apierr.IsCode(err, apierr.CodeInvalidState) {
			t.Fatalf("status %s: expected invalid_state, got %v", status, err)
		}
		if err.Error() != "Campaign is not active" {
			t.Fatalf("status %s: unexpected message %q", status, err.Error())
		}
		if got := fx.campaignTotal(t, campaign.ID); got != 100 {
			t.Fatalf("status %s: currentAmount changed to %v", status, got)
		}
		if got := fx.donationCount(t, campaign.ID); got != 0 {
			t.Fatalf("status %s: donation persisted", status)
		}
	}
}

func TestCreateDonationRollsBackWhenAdjustFails(t *testing.T) {
	fx := newDonationFixture(t, nil, func(inner repos.CampaignRepo) repos.CampaignRepo {
		return &failingAdjustRepo{CampaignRepo: inner}
	})
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 100)

	_, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: 50, CampaignID: campaign.ID})
	if err == nil {
		t.Fatalf("expected error when aggregate adjust fails")
	}
	if got := fx.donationCount(t, campaign.ID); got != 0 {
		t.Fatalf("donation insert not rolled back; %d rows remain", got)
	}
	if got := fx.campaignTotal(t, campaign.ID); got != 100 {
		t.Fatalf("currentAmount changed to %v", got)
	}
}

func TestCreateDonationSurvivesMailerFailure(t *testing.T) {
	fx := newDonationFixture(t, errors.New("smtp down"), nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 0)

	view, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: 75, CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("Create must not fail on notification errors: %v", err)
	}
	if view == nil {
		t.Fatalf("expected donation view")
	}

	select {
	case sent := <-fx.mailer.sent:
		if sent.Donor.Email != "alice@example.com" {
			t.Fatalf("thank-you email addressed to %q", sent.Donor.Email)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("mailer never invoked")
	}

	if got := fx.campaignTotal(t, campaign.ID); got != 75 {
		t.Fatalf("expected currentAmount 75, got %v", got)
	}
}

func TestCreateDonationFeedEventMasksAnonymousDonor(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 0)

	_, err := fx.service.Create(ctxFor(donor), CreateDonationInput{
		Amount:      10,
		CampaignID:  campaign.ID,
		IsAnonymous: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	event := fx.feed.lastCreated()
	if event == nil {
		t.Fatalf("expected feed event")
	}
	if event.Donor.Username != types.AnonymousDonorName {
		t.Fatalf("feed exposed donor username %q", event.Donor.Username)
	}
	if event.Donor.Email != "" {
		t.Fatalf("feed exposed donor email")
	}
}

func TestGetDonationOwnershipChecks(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	bob := testutil.SeedUser(t, ctx, fx.db, "bob", requestdata.RoleDonor)
	admin := testutil.SeedUser(t, ctx, fx.db, "root", requestdata.RoleAdmin)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, alice.ID, types.CampaignStatusActive, 0)
	donation := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, 10, types.DonationStatusCompleted, time.Now().UTC())

	if _, err := fx.service.Get(ctxFor(alice), donation.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	_, err := fx.service.Get(ctxFor(bob), donation.ID)
	if !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err.Error() != "Not authorized to view this donation" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	view, err := fx.service.Get(ctxFor(admin), donation.ID)
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if view.Donor.Username != "alice" || view.Donor.Email != "alice@example.com" {
		t.Fatalf("donor projection missing: %+v", view.Donor)
	}
	if view.Campaign == nil || view.Campaign.Title == "" || view.Campaign.GoalAmount == 0 {
		t.Fatalf("campaign projection missing: %+v", view.Campaign)
	}
}

func TestGetDonationNotFound(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)

	_, err := fx.service.Get(ctxFor(alice), uuid.New())
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if err.Error() != "Donation not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestListForCampaignAnonymization(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	bob := testutil.SeedUser(t, ctx, fx.db, "bob", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, alice.ID, types.CampaignStatusActive, 0)

	now := time.Now().UTC()
	anon := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, 10, types.DonationStatusCompleted, now.Add(-time.Minute))
	if err := fx.db.Model(&types.Donation{}).Where("id = ?", anon.ID).Update("is_anonymous", true).Error; err != nil {
		t.Fatalf("marking donation anonymous: %v", err)
	}
	testutil.SeedDonation(t, ctx, fx.db, campaign.ID, bob.ID, 20, types.DonationStatusCompleted, now)

	views, err := fx.service.ListForCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("ListForCampaign: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(views))
	}

	for _, v := range views {
		if v.Donor.Email != "" {
			t.Fatalf("campaign listing exposed a donor email")
		}
	}
	if views[0].Donor.Username != "bob" {
		t.Fatalf("expected non-anonymous donor username, got %q", views[0].Donor.Username)
	}
	if views[1].Donor.Username != types.AnonymousDonorName {
		t.Fatalf("expected %q for anonymous donor, got %q", types.AnonymousDonorName, views[1].Donor.Username)
	}
}

func TestListForCampaignCapAndStatusFilter(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, alice.ID, types.CampaignStatusActive, 0)

	base := time.Now().UTC().Add(-2 * time.Hour)
	for i := 0; i < 55; i++ {
		testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, float64(i+1), types.DonationStatusCompleted, base.Add(time.Duration(i)*time.Second))
	}
	testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, 999, types.DonationStatusPending, time.Now().UTC())

	views, err := fx.service.ListForCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("ListForCampaign: %v", err)
	}
	if len(views) != 50 {
		t.Fatalf("expected cap of 50, got %d", len(views))
	}
	for _, v := range views {
		if v.Status != types.DonationStatusCompleted {
			t.Fatalf("non-completed donation surfaced: %s", v.Status)
		}
		if v.Amount == 999 {
			t.Fatalf("pending donation surfaced")
		}
	}
	if views[0].Amount != 55 {
		t.Fatalf("expected newest donation first, got amount %v", views[0].Amount)
	}
}

func TestListMineProjectsCampaigns(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	alice := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	bob := testutil.SeedUser(t, ctx, fx.db, "bob", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, alice.ID, types.CampaignStatusActive, 0)

	now := time.Now().UTC()
	older := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, 10, types.DonationStatusCompleted, now.Add(-time.Hour))
	newer := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, alice.ID, 20, types.DonationStatusCompleted, now)
	testutil.SeedDonation(t, ctx, fx.db, campaign.ID, bob.ID, 30, types.DonationStatusCompleted, now)

	views, err := fx.service.ListMine(ctxFor(alice))
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(views))
	}
	if views[0].ID != newer.ID || views[1].ID != older.ID {
		t.Fatalf("expected newest-first ordering")
	}
	for _, v := range views {
		if v.Campaign == nil || v.Campaign.Title != campaign.Title || v.Campaign.Category != campaign.Category || v.Campaign.GoalAmount != campaign.GoalAmount {
			t.Fatalf("campaign projection incomplete: %+v", v.Campaign)
		}
	}
}

func TestDeleteDonationReversesCompletedTotal(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	admin := testutil.SeedUser(t, ctx, fx.db, "root", requestdata.RoleAdmin)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 100)

	view, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: 50, CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := fx.campaignTotal(t, campaign.ID); got != 150 {
		t.Fatalf("expected currentAmount 150 after create, got %v", got)
	}

	if err := fx.service.Delete(ctxFor(admin), view.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := fx.campaignTotal(t, campaign.ID); got != 100 {
		t.Fatalf("expected currentAmount back to 100 after delete, got %v", got)
	}
	if got := fx.donationCount(t, campaign.ID); got != 0 {
		t.Fatalf("donation record not removed")
	}
}

func TestDeleteNonCompletedDonationLeavesTotal(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	admin := testutil.SeedUser(t, ctx, fx.db, "root", requestdata.RoleAdmin)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 100)
	donation := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, donor.ID, 40, types.DonationStatusPending, time.Now().UTC())

	if err := fx.service.Delete(ctxFor(admin), donation.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := fx.campaignTotal(t, campaign.ID); got != 100 {
		t.Fatalf("pending delete changed currentAmount to %v", got)
	}
}

func TestDeleteDonationMissingCampaignIsNoop(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	admin := testutil.SeedUser(t, ctx, fx.db, "root", requestdata.RoleAdmin)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 100)
	donation := testutil.SeedDonation(t, ctx, fx.db, campaign.ID, donor.ID, 40, types.DonationStatusCompleted, time.Now().UTC())

	if err := fx.db.Where("id = ?", campaign.ID).Delete(&types.Campaign{}).Error; err != nil {
		t.Fatalf("removing campaign: %v", err)
	}

	if err := fx.service.Delete(ctxFor(admin), donation.ID); err != nil {
		t.Fatalf("Delete with missing campaign must be a no-op, got %v", err)
	}
	if got := fx.donationCount(t, campaign.ID); got != 0 {
		t.Fatalf("donation record not removed")
	}
}

func TestDeleteDonationNotFound(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	admin := testutil.SeedUser(t, ctx, fx.db, "root", requestdata.RoleAdmin)

	err := fx.service.Delete(ctxFor(admin), uuid.New())
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestCreateDonationRejectsNonPositiveAmounts(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)
	ctx := context.Background()

	donor := testutil.SeedUser(t, ctx, fx.db, "alice", requestdata.RoleDonor)
	campaign := testutil.SeedCampaign(t, ctx, fx.db, donor.ID, types.CampaignStatusActive, 0)

	for _, amount := range []float64{0, -10} {
		_, err := fx.service.Create(ctxFor(donor), CreateDonationInput{Amount: amount, CampaignID: campaign.ID})
		if !apierr.IsCode(err, apierr.CodeBadRequest) {
			t.Fatalf("amount %v: expected bad_request, got %v", amount, err)
		}
	}
	if got := fx.donationCount(t, campaign.ID); got != 0 {
		t.Fatalf("invalid donation persisted")
	}
}

func TestCreateDonationRequiresIdentity(t *testing.T) {
	fx := newDonationFixture(t, nil, nil)

	_, err := fx.service.Create(context.Background(), CreateDonationInput{Amount: 10, CampaignID: uuid.New()})
	if !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized without identity, got %v", err)
	}
}
