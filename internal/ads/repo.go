package ads

import (
	"context"

	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/autoads/autoads-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists listings and their engagement rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, ad *models.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

func (r *Repository) Save(ctx context.Context, ad *models.Ad) error {
	return r.db.WithContext(ctx).Save(ad).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Ad{}).Error
}

// FindByID loads the ad or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.WithContext(ctx).First(&ad, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

// FindBySlug loads the ad or returns gorm.ErrRecordNotFound.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.WithContext(ctx).First(&ad, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

// SlugExists reports whether any ad already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Ad{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type listQuery struct {
	OwnerID    uuid.UUID
	Status     *enums.AdStatus
	Pagination pagination.Params
}

// ListByOwner returns one page of the owner's ads, newest first. It fetches
// one extra row so the caller can tell whether another page exists.
func (r *Repository) ListByOwner(ctx context.Context, q listQuery) ([]models.Ad, error) {
	cursor, err := pagination.ParseCursor(q.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Ad{}).Where("user_id = ?", q.OwnerID)
	if q.Status != nil {
		qb = qb.Where("status = ?", *q.Status)
	}

	var out []models.Ad
	if err := qb.Scopes(pagination.After(cursor)).
		Limit(pagination.LimitWithBuffer(q.Pagination.Limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListOtherPublic returns up to limit of the owner's other non-deleted ads.
func (r *Repository) ListOtherPublic(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]models.Ad, error) {
	var out []models.Ad
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id <> ? AND status <> ?", ownerID, excludeID, enums.AdStatusDeleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// OwnerStats aggregates the owner's listings.
type OwnerStats struct {
	TotalAds       int64 `gorm:"column:total_ads"`
	ActiveAds      int64 `gorm:"column:active_ads"`
	TotalViews     int64 `gorm:"column:total_views"`
	WhatsAppClicks int64 `gorm:"column:whatsapp_clicks"`
}

func (r *Repository) Stats(ctx context.Context, ownerID uuid.UUID) (OwnerStats, error) {
	var stats OwnerStats
	err := r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Select(
			"COUNT(*) AS total_ads, "+
				"COALESCE(SUM(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END), 0) AS active_ads, "+
				"COALESCE(SUM(view_count), 0) AS total_views, "+
				"COALESCE(SUM(whatsapp_click_count), 0) AS whatsapp_clicks",
			enums.AdStatusActive, enums.AdStatusApproved,
		).
		Where("user_id = ? AND status <> ?", ownerID, enums.AdStatusDeleted).
		Scan(&stats).Error
	return stats, err
}

// RecordView inserts the view row and bumps the ad counter in one
// transaction, returning the new total.
func (r *Repository) RecordView(ctx context.Context, view *models.AdView) (int64, error) {
	return r.record(ctx, view, view.AdID, "view_count")
}

// RecordWhatsAppClick mirrors RecordView for contact clicks.
func (r *Repository) RecordWhatsAppClick(ctx context.Context, click *models.AdWhatsAppClick) (int64, error) {
	return r.record(ctx, click, click.AdID, "whatsapp_click_count")
}

func (r *Repository) record(ctx context.Context, row any, adID uuid.UUID, column string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		var err error
		total, err = r.WithTx(tx).increment(ctx, adID, column)
		return err
	})
	return total, err
}

func (r *Repository) increment(ctx context.Context, adID uuid.UUID, column string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Ad{}).
		Where("id = ?", adID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Ad{}).Where("id = ?", adID).Select(column).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
