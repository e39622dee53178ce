package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/autoads/autoads-backend/api/middleware"
	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/api/validators"
	"github.com/autoads/autoads-backend/internal/ads"
	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/pagination"
	"github.com/autoads/autoads-backend/pkg/types"
)

type createAdRequest struct {
	Title        string          `json:"title" validate:"required,max=120"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description" validate:"max=5000"`
	Images       []string        `json:"images" validate:"required,min=1,dive,required"`
	DailyBudget  decimal.Decimal `json:"daily_budget"`
	VideoURL     *string         `json:"video_url"`
	ContactLink  string          `json:"contact_link" validate:"required"`
	Type         string          `json:"type"`
	Location     string          `json:"location"`
	VehicleModel *string         `json:"vehicle_model"`
	VehicleYear  *int            `json:"vehicle_year"`
}

func (r createAdRequest) toInput() (ads.CreateAdInput, error) {
	input := ads.CreateAdInput{
		Title:        r.Title,
		Price:        r.Price,
		Description:  r.Description,
		Images:       r.Images,
		DailyBudget:  r.DailyBudget,
		VideoURL:     r.VideoURL,
		ContactLink:  r.ContactLink,
		Location:     r.Location,
		VehicleModel: r.VehicleModel,
		VehicleYear:  r.VehicleYear,
	}
	if strings.TrimSpace(r.Type) != "" {
		adType, err := enums.ParseAdType(r.Type)
		if err != nil {
			return ads.CreateAdInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid type").WithDetails(map[string]string{"type": "must be normal, priority or professional"})
		}
		input.Type = adType
	}
	return input, nil
}

type updateAdRequest struct {
	Title        *string                `json:"title" validate:"omitempty,max=120"`
	Price        *decimal.Decimal       `json:"price"`
	Description  *string                `json:"description" validate:"omitempty,max=5000"`
	Images       *[]string              `json:"images" validate:"omitempty,min=1"`
	DailyBudget  *decimal.Decimal       `json:"daily_budget"`
	VideoURL     types.Nullable[string] `json:"video_url"`
	ContactLink  *string                `json:"contact_link"`
	Type         *string                `json:"type"`
	Location     *string                `json:"location"`
	VehicleModel types.Nullable[string] `json:"vehicle_model"`
	VehicleYear  *int                   `json:"vehicle_year"`
}

func (r updateAdRequest) toInput() (ads.UpdateAdInput, error) {
	input := ads.UpdateAdInput{
		Title:        r.Title,
		Price:        r.Price,
		Description:  r.Description,
		Images:       r.Images,
		DailyBudget:  r.DailyBudget,
		VideoURL:     clearable(r.VideoURL),
		ContactLink:  r.ContactLink,
		Location:     r.Location,
		VehicleModel: clearable(r.VehicleModel),
		VehicleYear:  r.VehicleYear,
	}
	if r.Type != nil {
		adType, err := enums.ParseAdType(*r.Type)
		if err != nil {
			return ads.UpdateAdInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid type").WithDetails(map[string]string{"type": "must be normal, priority or professional"})
		}
		input.Type = &adType
	}
	return input, nil
}

// clearable maps an explicit null to an empty string, which the service
// treats as "remove".
func clearable(v types.Nullable[string]) *string {
	if !v.Set {
		return nil
	}
	if v.Value == nil {
		empty := ""
		return &empty
	}
	return v.Value
}

type updateAdStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdCreate publishes a new listing for the caller.
func AdCreate(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createAdRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ad, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ad)
	}
}

// AdList returns one page of the caller's listings.
func AdList(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ads.ListAdsInput{
			OwnerID: userID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAdStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			input.Status = &status
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdStats returns the caller's dashboard totals.
func AdStats(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func AdGet(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adID, err := validators.ParseUUIDParam(r, "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ad, err := svc.Get(r.Context(), userID, adID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ad)
	}
}

// AdUpdate applies a partial update. The slug is never regenerated.
func AdUpdate(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adID, err := validators.ParseUUIDParam(r, "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAdRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ad, err := svc.Update(r.Context(), userID, adID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ad)
	}
}

func AdUpdateStatus(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adID, err := validators.ParseUUIDParam(r, "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAdStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ad, err := svc.UpdateStatus(r.Context(), userID, adID, enums.AdStatus(strings.TrimSpace(body.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ad)
	}
}

func AdDelete(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adID, err := validators.ParseUUIDParam(r, "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, adID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// PublicAdGet renders the public listing page payload.
func PublicAdGet(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		page, err := svc.GetPublic(r.Context(), slugParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// PublicAdView counts an anonymous page view.
func PublicAdView(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		result, err := svc.RegisterView(r.Context(), slugParam(r), visitorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PublicAdWhatsAppClick counts a click and returns the wa.me redirect URL.
func PublicAdWhatsAppClick(svc ads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("ads"))
			return
		}
		result, err := svc.RegisterWhatsAppClick(r.Context(), slugParam(r), visitorFrom(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func visitorFrom(r *http.Request) ads.Visitor {
	return ads.Visitor{
		IP:        middleware.ClientIP(r),
		UserAgent: validators.CleanText(r.UserAgent(), 512),
	}
}
