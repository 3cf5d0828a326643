package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/types"
)

type DonationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, donations []*types.Donation) ([]*types.Donation, error)
	GetByID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (*types.Donation, error)
	ListByDonor(ctx context.Context, tx *gorm.DB, donorID uuid.UUID) ([]*types.Donation, error)
	ListCompletedByCampaign(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, limit int) ([]*types.Donation, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (int64, error)
}

type donationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDonationRepo(db *gorm.DB, baseLog *logger.Logger) DonationRepo {
	repoLog := baseLog.With("repo", "DonationRepo")
	return &donationRepo{db: db, log: repoLog}
}

func (dr *donationRepo) Create(ctx context.Context, tx *gorm.DB, donations []*types.Donation) ([]*types.Donation, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if len(donations) == 0 {
		return []*types.Donation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (dr *donationRepo) GetByID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (*types.Donation, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Donation
	if err := transaction.WithContext(ctx).
		Where("id = ?", donationID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (dr *donationRepo) ListByDonor(ctx context.Context, tx *gorm.DB, donorID uuid.UUID) ([]*types.Donation, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.Donation
	if err := transaction.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *donationRepo) ListCompletedByCampaign(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, limit int) ([]*types.Donation, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	query := transaction.WithContext(ctx).
		Where("campaign_id = ? AND status = ?", campaignID, types.DonationStatusCompleted).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.Donation
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *donationRepo) DeleteByID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", donationID).
		Delete(&types.Donation{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
