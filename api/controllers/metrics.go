package controllers

import (
	"net/http"

	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/api/validators"
	"github.com/autoads/autoads-backend/internal/campaignmetrics"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
)

// MetricsImport parses the uploaded CSV export and returns the refreshed dashboard.
func MetricsImport(svc campaignmetrics.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("metrics"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadFormFile(w, r, "file", limits.CSVBytes+multipartOverhead, limits.FormMemoryBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		if !validators.HasExtension(file.Name, ".csv") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "only .csv files are accepted").WithDetails(map[string]string{"file": file.Name}))
			return
		}
		if limits.CSVBytes > 0 && file.Size > limits.CSVBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "file exceeds upload limit").WithDetails(map[string]int64{"max_bytes": limits.CSVBytes}))
			return
		}

		result, err := svc.Import(r.Context(), userID, campaignmetrics.ImportInput{
			FileName: file.Name,
			Body:     file.File,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func MetricsDashboard(svc campaignmetrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("metrics"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := metricsFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), userID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

// MetricsClear deletes every stored row of the caller.
func MetricsClear(svc campaignmetrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("metrics"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := svc.Clear(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}

// MetricsExport streams the filtered rows as an XLSX workbook.
func MetricsExport(svc campaignmetrics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("metrics"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := metricsFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Export(r.Context(), userID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, out.FileName, out.ContentType, out.Body)
	}
}

func metricsFilter(r *http.Request) (campaignmetrics.Filter, error) {
	day, err := validators.ParseQueryDate(r, "day")
	if err != nil {
		return campaignmetrics.Filter{}, err
	}
	return campaignmetrics.Filter{
		Search: validators.CleanText(r.URL.Query().Get("search"), 200),
		Day:    day,
	}, nil
}
