package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/givebridge-backend/internal/platform/logger"
	"github.com/yungbote/givebridge-backend/internal/types"
)

type CampaignRepo interface {
	Create(ctx context.Context, tx *gorm.DB, campaigns []*types.Campaign) ([]*types.Campaign, error)
	GetByID(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) (*types.Campaign, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, campaignIDs []uuid.UUID) ([]*types.Campaign, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Campaign, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, status string) (int64, error)

	// AdjustCurrentAmount applies a relative delta to the campaign's running
	// total as a single SQL update, never read-modify-write, so concurrent
	// donations to the same campaign cannot lose increments. Returns the
	// number of rows touched; 0 means the campaign no longer exists.
	AdjustCurrentAmount(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, delta float64) (int64, error)
}

type campaignRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCampaignRepo(db *gorm.DB, baseLog *logger.Logger) CampaignRepo {
	repoLog := baseLog.With("repo", "CampaignRepo")
	return &campaignRepo{db: db, log: repoLog}
}

func (cr *campaignRepo) Create(ctx context.Context, tx *gorm.DB, campaigns []*types.Campaign) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(campaigns) == 0 {
		return []*types.Campaign{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (cr *campaignRepo) GetByID(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) (*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Campaign
	if err := transaction.WithContext(ctx).
		Where("id = ?", campaignID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (cr *campaignRepo) GetByIDs(ctx context.Context, tx *gorm.DB, campaignIDs []uuid.UUID) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Campaign
	if len(campaignIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", campaignIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *campaignRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Campaign
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *campaignRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, status string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Campaign{}).
		Where("id = ?", campaignID).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (cr *campaignRepo) AdjustCurrentAmount(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, delta float64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Campaign{}).
		Where("id = ?", campaignID).
		UpdateColumn("current_amount", gorm.Expr("current_amount + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
