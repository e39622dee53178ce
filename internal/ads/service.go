package ads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autoads/autoads-backend/internal/profiles"
	"github.com/autoads/autoads-backend/pkg/db"
	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/pagination"
	"github.com/autoads/autoads-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	otherAdsLimit     = 4
	slugAttempts      = 5
	defaultMaxImages  = 10
	fallbackSeller    = "Usuário"
	slugConstraint    = "ads_slug_key"
	maxTitleLength    = 120
	maxDescriptionLen = 5000
)

// Service exposes listing management and the public listing page.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateAdInput) (*AdDTO, error)
	Get(ctx context.Context, userID, adID uuid.UUID) (*AdDTO, error)
	List(ctx context.Context, input ListAdsInput) (*types.Page[AdDTO], error)
	Update(ctx context.Context, userID, adID uuid.UUID, input UpdateAdInput) (*AdDTO, error)
	UpdateStatus(ctx context.Context, userID, adID uuid.UUID, status enums.AdStatus) (*AdDTO, error)
	Delete(ctx context.Context, userID, adID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*StatsDTO, error)
	GetPublic(ctx context.Context, slug string) (*PublicAdDTO, error)
	RegisterView(ctx context.Context, slug string, visitor Visitor) (*EngagementDTO, error)
	RegisterWhatsAppClick(ctx context.Context, slug string, visitor Visitor) (*EngagementDTO, error)
}

// CreateAdInput holds the validated payload to publish a listing.
type CreateAdInput struct {
	Title        string
	Price        decimal.Decimal
	Description  string
	Images       []string
	DailyBudget  decimal.Decimal
	VideoURL     *string
	ContactLink  string
	Type         enums.AdType
	Location     string
	VehicleModel *string
	VehicleYear  *int
}

// UpdateAdInput holds optional listing mutations. The slug never changes.
type UpdateAdInput struct {
	Title        *string
	Price        *decimal.Decimal
	Description  *string
	Images       *[]string
	DailyBudget  *decimal.Decimal
	VideoURL     *string
	ContactLink  *string
	Type         *enums.AdType
	Location     *string
	VehicleModel *string
	VehicleYear  *int
}

// ListAdsInput selects one page of the owner's listings.
type ListAdsInput struct {
	OwnerID    uuid.UUID
	Status     *enums.AdStatus
	Pagination pagination.Params
}

// Visitor identifies the anonymous client behind a view or click.
type Visitor struct {
	IP        string
	UserAgent string
}

type profileReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type emailReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams wires the ads service.
type ServiceParams struct {
	Repo            *Repository
	Profiles        profileReader
	Users           emailReader
	Publisher       events.Publisher
	Logger          *logger.Logger
	PublicBaseURL   string
	DefaultLocation string
	MaxImages       int
	Now             func() time.Time
}

type service struct {
	repo            *Repository
	profiles        profileReader
	users           emailReader
	publisher       events.Publisher
	logg            *logger.Logger
	publicBaseURL   string
	defaultLocation string
	maxImages       int
	now             func() time.Time
	suffix          func() string
}

// NewService validates params and builds the ads service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ads repository required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(params.PublicBaseURL) == "" {
		return nil, fmt.Errorf("public base url required")
	}
	suffix, err := suffixGenerator()
	if err != nil {
		return nil, fmt.Errorf("slug suffix generator: %w", err)
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	location := strings.TrimSpace(params.DefaultLocation)
	if location == "" {
		location = "Brasil"
	}
	maxImages := params.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxImages
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:            params.Repo,
		profiles:        params.Profiles,
		users:           params.Users,
		publisher:       publisher,
		logg:            params.Logger,
		publicBaseURL:   params.PublicBaseURL,
		defaultLocation: location,
		maxImages:       maxImages,
		now:             now,
		suffix:          suffix,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAdInput) (*AdDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if err := s.validateCreate(&input); err != nil {
		return nil, err
	}

	ad := &models.Ad{
		UserID:       userID,
		Title:        input.Title,
		Price:        input.Price,
		Description:  input.Description,
		Images:       pq.StringArray(input.Images),
		DailyBudget:  input.DailyBudget,
		VideoURL:     trimOptional(input.VideoURL),
		ContactLink:  input.ContactLink,
		Type:         input.Type,
		Status:       enums.AdStatusInReview,
		Location:     input.Location,
		VehicleModel: trimOptional(input.VehicleModel),
		VehicleYear:  input.VehicleYear,
	}

	base := Slugify(input.Title)
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := s.nextSlug(ctx, base, attempt)
		if err != nil {
			return nil, err
		}
		ad.ID = uuid.Nil
		ad.Slug = slug
		err = s.repo.Create(ctx, ad)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, slugConstraint) && attempt < slugAttempts-1 {
			continue
		}
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a unique slug")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ad")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"ad_id": ad.ID.String(), "slug": ad.Slug})
	s.logg.Info(logCtx, "ad created")
	s.publishCreated(logCtx, ad)

	dto := newAdDTO(ad, s.publicBaseURL)
	return &dto, nil
}

// nextSlug returns base on the first attempt when it is free, otherwise base
// with a random suffix.
func (s *service) nextSlug(ctx context.Context, base string, attempt int) (string, error) {
	if attempt == 0 {
		exists, err := s.repo.SlugExists(ctx, base)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !exists {
			return base, nil
		}
	}
	return base + "-" + s.suffix(), nil
}

func (s *service) validateCreate(input *CreateAdInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.ContactLink = strings.TrimSpace(input.ContactLink)
	input.Location = strings.TrimSpace(input.Location)
	input.Images = cleanImages(input.Images)

	if input.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(input.Title) > maxTitleLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is too long")
	}
	if len(input.Description) > maxDescriptionLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if input.DailyBudget.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "daily budget cannot be negative")
	}
	if len(input.Images) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if len(input.Images) > s.maxImages {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images are allowed", s.maxImages))
	}
	if input.ContactLink == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact link is required")
	}
	if input.Type == "" {
		input.Type = enums.AdTypeNormal
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid ad type")
	}
	if input.Location == "" {
		input.Location = s.defaultLocation
	}
	if err := validateYear(input.VehicleYear, s.now()); err != nil {
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID, adID uuid.UUID) (*AdDTO, error) {
	ad, err := s.loadOwned(ctx, userID, adID)
	if err != nil {
		return nil, err
	}
	dto := newAdDTO(ad, s.publicBaseURL)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListAdsInput) (*types.Page[AdDTO], error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	rows, err := s.repo.ListByOwner(ctx, listQuery{
		OwnerID:    input.OwnerID,
		Status:     input.Status,
		Pagination: input.Pagination,
	})
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ads")
	}

	rows, next := pagination.Trim(rows, input.Pagination.Limit, func(ad models.Ad) pagination.Cursor {
		return pagination.Cursor{CreatedAt: ad.CreatedAt, ID: ad.ID}
	})
	var items []AdDTO
	for i := range rows {
		items = append(items, newAdDTO(&rows[i], s.publicBaseURL))
	}
	page := types.NewPage(items, next)
	return &page, nil
}

func (s *service) Update(ctx context.Context, userID, adID uuid.UUID, input UpdateAdInput) (*AdDTO, error) {
	ad, err := s.loadOwned(ctx, userID, adID)
	if err != nil {
		return nil, err
	}
	if ad.Status == enums.AdStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deleted ads cannot be edited")
	}
	if err := s.applyUpdate(ad, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, ad); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ad")
	}
	dto := newAdDTO(ad, s.publicBaseURL)
	return &dto, nil
}

func (s *service) applyUpdate(ad *models.Ad, input UpdateAdInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		if len(title) > maxTitleLength {
			return pkgerrors.New(pkgerrors.CodeValidation, "title is too long")
		}
		ad.Title = title
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		ad.Price = *input.Price
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if len(desc) > maxDescriptionLen {
			return pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
		}
		ad.Description = desc
	}
	if input.Images != nil {
		images := cleanImages(*input.Images)
		if len(images) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
		}
		if len(images) > s.maxImages {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images are allowed", s.maxImages))
		}
		ad.Images = pq.StringArray(images)
	}
	if input.DailyBudget != nil {
		if input.DailyBudget.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "daily budget cannot be negative")
		}
		ad.DailyBudget = *input.DailyBudget
	}
	if input.VideoURL != nil {
		ad.VideoURL = trimOptional(input.VideoURL)
	}
	if input.ContactLink != nil {
		contact := strings.TrimSpace(*input.ContactLink)
		if contact == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "contact link is required")
		}
		ad.ContactLink = contact
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid ad type")
		}
		ad.Type = *input.Type
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if location == "" {
			location = s.defaultLocation
		}
		ad.Location = location
	}
	if input.VehicleModel != nil {
		ad.VehicleModel = trimOptional(input.VehicleModel)
	}
	if input.VehicleYear != nil {
		if err := validateYear(input.VehicleYear, s.now()); err != nil {
			return err
		}
		ad.VehicleYear = input.VehicleYear
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, userID, adID uuid.UUID, status enums.AdStatus) (*AdDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ad status")
	}
	ad, err := s.loadOwned(ctx, userID, adID)
	if err != nil {
		return nil, err
	}
	if ad.Status == enums.AdStatusDeleted && status != enums.AdStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "deleted ads cannot be reactivated")
	}
	if ad.Status != status {
		ad.Status = status
		if err := s.repo.Save(ctx, ad); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ad status")
		}
	}
	dto := newAdDTO(ad, s.publicBaseURL)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, adID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, adID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, adID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ad")
	}
	s.logg.Info(s.logg.WithField(ctx, "ad_id", adID.String()), "ad deleted")
	return nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*StatsDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ad stats")
	}
	return &StatsDTO{
		TotalAds:       stats.TotalAds,
		ActiveAds:      stats.ActiveAds,
		TotalViews:     stats.TotalViews,
		WhatsAppClicks: stats.WhatsAppClicks,
	}, nil
}

func (s *service) GetPublic(ctx context.Context, slug string) (*PublicAdDTO, error) {
	ad, err := s.loadPublic(ctx, slug)
	if err != nil {
		return nil, err
	}

	out := &PublicAdDTO{Ad: newAdDTO(ad, s.publicBaseURL), OtherAds: []AdSummaryDTO{}}

	profile, err := s.profiles.FindByUserID(ctx, ad.UserID)
	switch {
	case err == nil:
		out.Seller = &SellerDTO{
			FullName:     profile.FullName,
			BusinessName: profile.BusinessName,
			Phone:        profile.Phone,
			About:        profile.About,
			AvatarURL:    profile.AvatarURL,
			Initials:     profiles.Initials(profile.FullName, profile.BusinessName),
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}

	others, err := s.repo.ListOtherPublic(ctx, ad.UserID, ad.ID, otherAdsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller ads")
	}
	for _, other := range others {
		out.OtherAds = append(out.OtherAds, newAdSummaryDTO(other))
	}
	return out, nil
}

func (s *service) RegisterView(ctx context.Context, slug string, visitor Visitor) (*EngagementDTO, error) {
	ad, err := s.loadPublic(ctx, slug)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.RecordView(ctx, &models.AdView{
		AdID:      ad.ID,
		IP:        visitor.IP,
		UserAgent: visitor.UserAgent,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register view")
	}
	s.publishEngagement(ctx, enums.EventAdViewed, ad, visitor, total)
	return &EngagementDTO{Total: total}, nil
}

func (s *service) RegisterWhatsAppClick(ctx context.Context, slug string, visitor Visitor) (*EngagementDTO, error) {
	ad, err := s.loadPublic(ctx, slug)
	if err != nil {
		return nil, err
	}
	link := WhatsAppURL(ad.ContactLink, ad.Title, ad.Price)
	if link == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ad has no whatsapp number")
	}
	total, err := s.repo.RecordWhatsAppClick(ctx, &models.AdWhatsAppClick{
		AdID:      ad.ID,
		IP:        visitor.IP,
		UserAgent: visitor.UserAgent,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register whatsapp click")
	}
	s.publishEngagement(ctx, enums.EventAdWhatsAppClicked, ad, visitor, total)
	return &EngagementDTO{Total: total, WhatsAppURL: link}, nil
}

func (s *service) loadOwned(ctx context.Context, userID, adID uuid.UUID) (*models.Ad, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	ad, err := s.repo.FindByID(ctx, adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ad")
	}
	if ad.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
	}
	return ad, nil
}

func (s *service) loadPublic(ctx context.Context, slug string) (*models.Ad, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	ad, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ad")
	}
	if ad.Status == enums.AdStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
	}
	return ad, nil
}

func (s *service) publishCreated(ctx context.Context, ad *models.Ad) {
	payload := events.AdCreated{
		AdID:        ad.ID,
		UserID:      ad.UserID,
		Title:       ad.Title,
		Slug:        ad.Slug,
		Price:       ad.Price.String(),
		DailyBudget: ad.DailyBudget.String(),
		ContactLink: ad.ContactLink,
		WhatsAppURL: WhatsAppURL(ad.ContactLink, ad.Title, ad.Price),
		AdType:      ad.Type.String(),
		PublicLink:  publicLink(s.publicBaseURL, ad.Slug),
		Model:       ad.Title,
		Year:        ad.VehicleYear,
		SellerName:  s.sellerName(ctx, ad.UserID),
	}
	if ad.VehicleModel != nil && *ad.VehicleModel != "" {
		payload.Model = *ad.VehicleModel
	}
	if profile, err := s.profiles.FindByUserID(ctx, ad.UserID); err == nil {
		payload.BusinessName = profile.BusinessName
	}

	actor := ad.UserID
	if err := s.publisher.Publish(ctx, events.Event{Type: enums.EventAdCreated, ActorID: &actor, Data: payload}); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publish ad_created failed")
	}
}

// sellerName prefers the profile's full name, then the account email.
func (s *service) sellerName(ctx context.Context, userID uuid.UUID) string {
	if profile, err := s.profiles.FindByUserID(ctx, userID); err == nil && strings.TrimSpace(profile.FullName) != "" {
		return strings.TrimSpace(profile.FullName)
	}
	if s.users != nil {
		if user, err := s.users.FindByID(ctx, userID); err == nil && user.Email != "" {
			return user.Email
		}
	}
	return fallbackSeller
}

func (s *service) publishEngagement(ctx context.Context, eventType enums.EventType, ad *models.Ad, visitor Visitor, total int64) {
	payload := events.AdEngagement{
		AdID:      ad.ID,
		OwnerID:   ad.UserID,
		Slug:      ad.Slug,
		IP:        visitor.IP,
		UserAgent: visitor.UserAgent,
		Total:     total,
	}
	if err := s.publisher.Publish(ctx, events.Event{Type: eventType, Data: payload}); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"event_type": eventType.String(), "error": err.Error()}), "publish engagement event failed")
	}
}

func validateYear(year *int, now time.Time) error {
	if year == nil {
		return nil
	}
	if *year < 1900 || *year > now.Year()+1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle year")
	}
	return nil
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
