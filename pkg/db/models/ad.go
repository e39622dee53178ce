package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/autoads/autoads-backend/pkg/enums"
)

// Ad is a vehicle listing owned by one seller.
type Ad struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_ads_user_created,priority:1"`
	Title              string          `gorm:"column:title;not null"`
	Slug               string          `gorm:"column:slug;not null;uniqueIndex:ads_slug_key"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description        string          `gorm:"column:description;not null;default:''"`
	Images             pq.StringArray  `gorm:"column:images;type:text[];not null"`
	DailyBudget        decimal.Decimal `gorm:"column:daily_budget;type:numeric(12,2);not null;default:0"`
	VideoURL           *string         `gorm:"column:video_url"`
	ContactLink        string          `gorm:"column:contact_link;not null"`
	Type               enums.AdType    `gorm:"column:type;type:text;not null;default:'normal'"`
	Status             enums.AdStatus  `gorm:"column:status;type:text;not null;default:'in-review'"`
	Location           string          `gorm:"column:location;not null;default:'Brasil'"`
	VehicleModel       *string         `gorm:"column:vehicle_model"`
	VehicleYear        *int            `gorm:"column:vehicle_year"`
	ViewCount          int64           `gorm:"column:view_count;not null;default:0"`
	WhatsAppClickCount int64           `gorm:"column:whatsapp_click_count;not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_ads_user_created,priority:2"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Ad) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AdView records one registered view of a public ad page.
type AdView struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AdID      uuid.UUID `gorm:"column:ad_id;type:uuid;not null;index"`
	IP        string    `gorm:"column:ip;not null;default:''"`
	UserAgent string    `gorm:"column:user_agent;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdView) TableName() string { return "ad_views" }

func (v *AdView) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// AdWhatsAppClick records one click on the WhatsApp contact button.
type AdWhatsAppClick struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AdID      uuid.UUID `gorm:"column:ad_id;type:uuid;not null;index"`
	IP        string    `gorm:"column:ip;not null;default:''"`
	UserAgent string    `gorm:"column:user_agent;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdWhatsAppClick) TableName() string { return "ad_whatsapp_clicks" }

func (c *AdWhatsAppClick) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
