package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/autoads/autoads-backend/pkg/db/types"
)

// CampaignMetric is one stored line of an imported ads-manager export.
type CampaignMetric struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_campaign_metrics_user_order,priority:1"`
	ImportID         uuid.UUID       `gorm:"column:import_id;type:uuid;not null"`
	RowIndex         int             `gorm:"column:row_index;not null;index:idx_campaign_metrics_user_order,priority:3"`
	CampaignName     string          `gorm:"column:campaign_name;not null;default:''"`
	AdSetName        string          `gorm:"column:ad_set_name;not null;default:''"`
	AdName           string          `gorm:"column:ad_name;not null;default:''"`
	AmountSpent      float64         `gorm:"column:amount_spent;not null;default:0"`
	Reach            float64         `gorm:"column:reach;not null;default:0"`
	Impressions      float64         `gorm:"column:impressions;not null;default:0"`
	CPM              float64         `gorm:"column:cpm;not null;default:0"`
	Conversations    float64         `gorm:"column:messaging_conversations;not null;default:0"`
	LinkClicks       float64         `gorm:"column:link_clicks;not null;default:0"`
	LandingPageViews float64         `gorm:"column:landing_page_views;not null;default:0"`
	Leads            float64         `gorm:"column:leads;not null;default:0"`
	Day              string          `gorm:"column:day;not null;default:''"`
	Extra            dbtypes.JSONMap `gorm:"column:extra;type:jsonb"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_campaign_metrics_user_order,priority:2"`
}

func (m *CampaignMetric) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
