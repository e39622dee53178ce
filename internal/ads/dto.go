package ads

import (
	"time"

	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdDTO is the owner-facing listing payload.
type AdDTO struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	Title              string          `json:"title"`
	Slug               string          `json:"slug"`
	Price              decimal.Decimal `json:"price"`
	Description        string          `json:"description"`
	Images             []string        `json:"images"`
	DailyBudget        decimal.Decimal `json:"daily_budget"`
	VideoURL           *string         `json:"video_url,omitempty"`
	ContactLink        string          `json:"contact_link"`
	Type               enums.AdType    `json:"type"`
	Status             enums.AdStatus  `json:"status"`
	Location           string          `json:"location"`
	PublicLink         string          `json:"public_link"`
	VehicleModel       *string         `json:"vehicle_model,omitempty"`
	VehicleYear        *int            `json:"vehicle_year,omitempty"`
	ViewCount          int64           `json:"view_count"`
	WhatsAppClickCount int64           `json:"whatsapp_click_count"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// AdSummaryDTO is the compact card used for "other ads from this seller".
type AdSummaryDTO struct {
	ID     uuid.UUID       `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Images []string        `json:"images"`
	Slug   string          `json:"slug"`
}

// SellerDTO is the public part of the seller profile.
type SellerDTO struct {
	FullName     string  `json:"full_name"`
	BusinessName string  `json:"business_name"`
	Phone        string  `json:"phone,omitempty"`
	About        string  `json:"about,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	Initials     string  `json:"initials"`
}

// PublicAdDTO is served on the public listing page.
type PublicAdDTO struct {
	Ad       AdDTO          `json:"ad"`
	Seller   *SellerDTO     `json:"seller,omitempty"`
	OtherAds []AdSummaryDTO `json:"other_ads"`
}

// StatsDTO summarizes the owner's listings for the dashboard.
type StatsDTO struct {
	TotalAds       int64 `json:"total_ads"`
	ActiveAds      int64 `json:"active_ads"`
	TotalViews     int64 `json:"total_views"`
	WhatsAppClicks int64 `json:"whatsapp_clicks"`
}

// EngagementDTO is returned after a view or click is registered.
type EngagementDTO struct {
	Total       int64  `json:"total"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
}

func newAdDTO(ad *models.Ad, publicBaseURL string) AdDTO {
	images := append([]string{}, ad.Images...)
	return AdDTO{
		ID:                 ad.ID,
		UserID:             ad.UserID,
		Title:              ad.Title,
		Slug:               ad.Slug,
		Price:              ad.Price,
		Description:        ad.Description,
		Images:             images,
		DailyBudget:        ad.DailyBudget,
		VideoURL:           ad.VideoURL,
		ContactLink:        ad.ContactLink,
		Type:               ad.Type,
		Status:             ad.Status,
		Location:           ad.Location,
		PublicLink:         publicLink(publicBaseURL, ad.Slug),
		VehicleModel:       ad.VehicleModel,
		VehicleYear:        ad.VehicleYear,
		ViewCount:          ad.ViewCount,
		WhatsAppClickCount: ad.WhatsAppClickCount,
		CreatedAt:          ad.CreatedAt,
		UpdatedAt:          ad.UpdatedAt,
	}
}

func newAdSummaryDTO(ad models.Ad) AdSummaryDTO {
	return AdSummaryDTO{
		ID:     ad.ID,
		Title:  ad.Title,
		Price:  ad.Price,
		Images: append([]string{}, ad.Images...),
		Slug:   ad.Slug,
	}
}
