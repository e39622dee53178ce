package campaignmetrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autoads/autoads-backend/pkg/db/models"
	dbtypes "github.com/autoads/autoads-backend/pkg/db/types"
)

const insertBatchSize = 500

// Repository persists imported rows per owner.
type Repository interface {
	InsertRows(ctx context.Context, ownerID, importID uuid.UUID, rows []Row) error
	FetchRows(ctx context.Context, ownerID uuid.UUID) ([]Row, error)
	DeleteAllRows(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// InsertRows stores every row stamped with ownerID in one transaction, so a
// failure leaves previously stored rows untouched.
func (r *repository) InsertRows(ctx context.Context, ownerID, importID uuid.UUID, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	importedAt := time.Now().UTC()
	records := make([]models.CampaignMetric, len(rows))
	for i, row := range rows {
		records[i] = toModel(ownerID, importID, i, row)
		records[i].CreatedAt = importedAt
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
}

// FetchRows returns the owner's rows in import order.
func (r *repository) FetchRows(ctx context.Context, ownerID uuid.UUID) ([]Row, error) {
	var records []models.CampaignMetric
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Order("import_id ASC").
		Order("row_index ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = fromModel(rec)
	}
	return rows, nil
}

// DeleteAllRows removes every row the owner has imported.
func (r *repository) DeleteAllRows(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&models.CampaignMetric{})
	return res.RowsAffected, res.Error
}

func toModel(ownerID, importID uuid.UUID, index int, row Row) models.CampaignMetric {
	return models.CampaignMetric{
		UserID:           ownerID,
		ImportID:         importID,
		RowIndex:         index,
		CampaignName:     row.CampaignName,
		AdSetName:        row.AdSetName,
		AdName:           row.AdName,
		AmountSpent:      row.AmountSpent,
		Reach:            row.Reach,
		Impressions:      row.Impressions,
		CPM:              row.CPM,
		Conversations:    row.Conversations,
		LinkClicks:       row.LinkClicks,
		LandingPageViews: row.LandingPageViews,
		Leads:            row.Leads,
		Day:              row.Day,
		Extra:            dbtypes.JSONMap(row.Extra).Clone(),
	}
}

func fromModel(m models.CampaignMetric) Row {
	row := Row{
		CampaignName:     m.CampaignName,
		AdSetName:        m.AdSetName,
		AdName:           m.AdName,
		AmountSpent:      m.AmountSpent,
		Reach:            m.Reach,
		Impressions:      m.Impressions,
		CPM:              m.CPM,
		Conversations:    m.Conversations,
		LinkClicks:       m.LinkClicks,
		LandingPageViews: m.LandingPageViews,
		Leads:            m.Leads,
		Day:              m.Day,
	}
	if len(m.Extra) > 0 {
		row.Extra = map[string]string(m.Extra)
	}
	return row
}
