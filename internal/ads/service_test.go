package ads

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	ads := `
CREATE TABLE IF NOT EXISTS ads (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL,
  price NUMERIC NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  images TEXT NOT NULL,
  daily_budget NUMERIC NOT NULL DEFAULT 0,
  video_url TEXT,
  contact_link TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'normal',
  status TEXT NOT NULL DEFAULT 'in-review',
  location TEXT NOT NULL DEFAULT 'Brasil',
  vehicle_model TEXT,
  vehicle_year INTEGER,
  view_count INTEGER NOT NULL DEFAULT 0,
  whatsapp_click_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ads_slug_key UNIQUE (slug)
);`
	views := `
CREATE TABLE IF NOT EXISTS ad_views (
  id TEXT PRIMARY KEY,
  ad_id TEXT NOT NULL,
  ip TEXT NOT NULL DEFAULT '',
  user_agent TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	clicks := `
CREATE TABLE IF NOT EXISTS ad_whatsapp_clicks (
  id TEXT PRIMARY KEY,
  ad_id TEXT NOT NULL,
  ip TEXT NOT NULL DEFAULT '',
  user_agent TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	for _, ddl := range []string{ads, views, clicks} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

type stubProfiles struct {
	byUser map[uuid.UUID]*models.Profile
}

func (s stubProfiles) FindByUserID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if p, ok := s.byUser[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.events = append(p.events, evt)
	return nil
}

type fixture struct {
	svc       Service
	repo      *Repository
	publisher *recordingPublisher
	sellerID  uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := newTestDB(t)
	sellerID := uuid.New()
	publisher := &recordingPublisher{}
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Profiles: stubProfiles{byUser: map[uuid.UUID]*models.Profile{
			sellerID: {UserID: sellerID, FullName: "Maria Souza", BusinessName: "Souza Motors"},
		}},
		Publisher:     publisher,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		PublicBaseURL: "https://autolink.app/",
		Now:           func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, publisher: publisher, sellerID: sellerID}
}

func validInput() CreateAdInput {
	year := 2020
	return CreateAdInput{
		Title:       "Honda Civic EXL",
		Price:       decimal.NewFromInt(85000),
		Images:      []string{"https://cdn.example.com/a.jpg", " "},
		DailyBudget: decimal.NewFromInt(20),
		ContactLink: "+55 11 98888-7777",
		VehicleYear: &year,
	}
}

func TestCreateAssignsSlugDefaultsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ad, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "honda-civic-exl", ad.Slug)
	assert.Equal(t, enums.AdStatusInReview, ad.Status)
	assert.Equal(t, enums.AdTypeNormal, ad.Type)
	assert.Equal(t, "Brasil", ad.Location)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, ad.Images)
	assert.Equal(t, "https://autolink.app/honda-civic-exl", ad.PublicLink)

	require.Len(t, f.publisher.events, 1)
	evt := f.publisher.events[0]
	assert.Equal(t, enums.EventAdCreated, evt.Type)
	payload, ok := evt.Data.(events.AdCreated)
	require.True(t, ok)
	assert.Equal(t, "Maria Souza", payload.SellerName)
	assert.Equal(t, "Souza Motors", payload.BusinessName)
	assert.Equal(t, "Honda Civic EXL", payload.Model)
	assert.Contains(t, payload.WhatsAppURL, "https://wa.me/5511988887777")

	second, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, ad.Slug, second.Slug)
	assert.Regexp(t, `^honda-civic-exl-[0-9a-z]{6}$`, second.Slug)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.Nil, validInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	mutations := map[string]func(*CreateAdInput){
		"title":   func(in *CreateAdInput) { in.Title = "  " },
		"price":   func(in *CreateAdInput) { in.Price = decimal.Zero },
		"images":  func(in *CreateAdInput) { in.Images = nil },
		"contact": func(in *CreateAdInput) { in.ContactLink = "" },
		"type":    func(in *CreateAdInput) { in.Type = "vip" },
		"year":    func(in *CreateAdInput) { y := 1800; in.VehicleYear = &y },
		"budget":  func(in *CreateAdInput) { in.DailyBudget = decimal.NewFromInt(-1) },
	}
	for name, mutate := range mutations {
		in := validInput()
		mutate(&in)
		_, err := f.svc.Create(ctx, f.sellerID, in)
		assert.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: expected validation error, got %v", name, err)
	}
	assert.Empty(t, f.publisher.events)
}

func TestOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = f.svc.Get(ctx, stranger, ad.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = f.svc.Delete(ctx, stranger, ad.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	got, err := f.svc.Get(ctx, f.sellerID, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, ad.Slug, got.Slug)
}

func TestUpdateKeepsSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)

	title := "Honda Civic Touring"
	price := decimal.NewFromInt(99000)
	updated, err := f.svc.Update(ctx, f.sellerID, ad.ID, UpdateAdInput{Title: &title, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, ad.Slug, updated.Slug)

	empty := ""
	_, err = f.svc.Update(ctx, f.sellerID, ad.ID, UpdateAdInput{Title: &empty})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStatusTransitionsAndPublicVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.sellerID, ad.ID, "archived")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	active, err := f.svc.UpdateStatus(ctx, f.sellerID, ad.ID, enums.AdStatusActive)
	require.NoError(t, err)
	assert.Equal(t, enums.AdStatusActive, active.Status)

	_, err = f.svc.UpdateStatus(ctx, f.sellerID, ad.ID, enums.AdStatusDeleted)
	require.NoError(t, err)
	_, err = f.svc.GetPublic(ctx, ad.Slug)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.UpdateStatus(ctx, f.sellerID, ad.ID, enums.AdStatusActive)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, f.sellerID, validInput())
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, uuid.New(), validInput())
	require.NoError(t, err)

	page, err := f.svc.List(ctx, ListAdsInput{OwnerID: f.sellerID, Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.List(ctx, ListAdsInput{OwnerID: f.sellerID, Pagination: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(page.Items, rest.Items...) {
		assert.False(t, seen[item.ID], "duplicate ad across pages")
		seen[item.ID] = true
	}

	_, err = f.svc.List(ctx, ListAdsInput{OwnerID: f.sellerID, Pagination: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPublicPageAndEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	main, err := f.svc.Create(ctx, f.sellerID, validInput())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, f.sellerID, validInput())
		require.NoError(t, err)
	}

	page, err := f.svc.GetPublic(ctx, main.Slug)
	require.NoError(t, err)
	require.NotNil(t, page.Seller)
	assert.Equal(t, "MS", page.Seller.Initials)
	assert.Len(t, page.OtherAds, otherAdsLimit)
	for _, other := range page.OtherAds {
		assert.NotEqual(t, main.ID, other.ID)
	}

	visitor := Visitor{IP: "203.0.113.9", UserAgent: "test-agent"}
	view, err := f.svc.RegisterView(ctx, main.Slug, visitor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.Total)
	view, err = f.svc.RegisterView(ctx, main.Slug, visitor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, view.Total)

	click, err := f.svc.RegisterWhatsAppClick(ctx, main.Slug, visitor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, click.Total)
	assert.Contains(t, click.WhatsAppURL, "https://wa.me/5511988887777?text=")

	stats, err := f.svc.Stats(ctx, f.sellerID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, stats.TotalAds)
	assert.EqualValues(t, 0, stats.ActiveAds)
	assert.EqualValues(t, 2, stats.TotalViews)
	assert.EqualValues(t, 1, stats.WhatsAppClicks)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, enums.EventAdWhatsAppClicked, last.Type)
	payload := last.Data.(events.AdEngagement)
	assert.Equal(t, f.sellerID, payload.OwnerID)
	assert.Equal(t, "203.0.113.9", payload.IP)

	_, err = f.svc.RegisterView(ctx, "missing-slug", visitor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestClickWithoutNumberIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := validInput()
	in.ContactLink = "https://example.com/fale-conosco"
	ad, err := f.svc.Create(ctx, f.sellerID, in)
	require.NoError(t, err)

	_, err = f.svc.RegisterWhatsAppClick(ctx, ad.Slug, Visitor{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	stored, err := f.repo.FindByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.WhatsAppClickCount)
}

func TestRecordEngagementRollsBackForUnknownAd(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	missing := uuid.New()

	_, err := repo.RecordView(ctx, &models.AdView{AdID: missing, IP: "203.0.113.9"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.RecordWhatsAppClick(ctx, &models.AdWhatsAppClick{AdID: missing})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var views, clicks int64
	require.NoError(t, repo.db.Model(&models.AdView{}).Count(&views).Error)
	require.NoError(t, repo.db.Model(&models.AdWhatsAppClick{}).Count(&clicks).Error)
	assert.Zero(t, views)
	assert.Zero(t, clicks)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
