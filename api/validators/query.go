package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func fieldError(field, msg string, extra ...any) *pkgerrors.Error {
	details := map[string]any{"field": field}
	for i := 0; i+1 < len(extra); i += 2 {
		details[extra[i].(string)] = extra[i+1]
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads an optional integer query parameter within [lo, hi].
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "query parameter must be numeric")
	}
	if n < lo || n > hi {
		return 0, fieldError(key, "query parameter out of range", "min", lo, "max", hi)
	}
	return n, nil
}

// ParseQueryDate reads an optional YYYY-MM-DD query parameter. It returns
// the canonical text form, or "" when absent.
func ParseQueryDate(r *http.Request, key string) (string, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return "", nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return "", fieldError(key, "invalid "+key, "format", "YYYY-MM-DD")
	}
	return day.Format(time.DateOnly), nil
}

// ParseUUIDParam reads a chi path parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return uuid.Nil, fieldError(name, "invalid "+name)
	}
	return id, nil
}
