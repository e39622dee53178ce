package engagement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryPolicy bounds BigQuery insert retries. Zero values take defaults:
// 3 attempts, exponential backoff from 250ms capped at 2s.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 250 * time.Millisecond
	}
	if p.MaximumBackoff < p.InitialBackoff {
		p.MaximumBackoff = max(2*time.Second, p.InitialBackoff)
	}
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	b := retry.NewExponential(p.InitialBackoff)
	b = retry.WithCappedDuration(p.MaximumBackoff, b)
	return retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// BigQueryWriter streams ad event rows. Each row carries its event id as
// the insert id so BigQuery drops redelivered duplicates on its side.
type BigQueryWriter struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

func NewBigQueryWriter(client tableInserter, table string, policy RetryPolicy) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("ad events table is required")
	}
	return &BigQueryWriter{client: client, table: table, retry: policy.withDefaults()}, nil
}

// InsertAdEvent writes one row, retrying transient API failures.
func (w *BigQueryWriter) InsertAdEvent(ctx context.Context, row AdEventRow) error {
	rows := []any{&cbigquery.StructSaver{Schema: AdEventSchema, InsertID: row.EventID, Struct: row}}
	err := retry.Do(ctx, w.retry.backoff(), func(ctx context.Context) error {
		err := w.client.InsertRows(ctx, w.table, rows)
		if err != nil && isRetryableBigQueryError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %s row: %w", w.table, err)
	}
	return nil
}

// isRetryableBigQueryError accepts 408, 429 and 5xx-style failures. A
// PutMultiError is retryable only when every row error is.
func isRetryableBigQueryError(err error) bool {
	var multi cbigquery.PutMultiError
	if errors.As(err, &multi) {
		if len(multi) == 0 {
			return false
		}
		for _, rowErr := range multi {
			for _, inner := range rowErr.Errors {
				if !isRetryableBigQueryError(inner) {
					return false
				}
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		}
		return apiErr.Code >= http.StatusInternalServerError && apiErr.Code != http.StatusNotImplemented
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Aborted, codes.DeadlineExceeded, codes.Internal, codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}
