// Package bigquery streams rows into the analytics dataset.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
	"google.golang.org/api/googleapi"
)

const metadataCheckTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Client is bound to one dataset and its ad events table.
type Client struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
	table   string
}

// NewClient connects and checks that the dataset exists. The table is
// checked by Ping or created by EnsureTable.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	table := strings.TrimSpace(cfg.AdEventsTable)
	switch {
	case projectID == "":
		return nil, errProjectIDRequired
	case datasetID == "":
		return nil, errDatasetRequired
	case table == "":
		return nil, errTableNameRequired
	}

	bq, err := bigquery.NewClient(ctx, projectID, gcp.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	c := &Client{client: bq, dataset: bq.Dataset(datasetID), table: table}

	checkCtx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()
	if _, err := c.dataset.Metadata(checkCtx); err != nil {
		_ = bq.Close()
		return nil, describeMetadataErr("dataset", datasetID, err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dataset": datasetID, "table": table}), "bigquery client initialized")
	}
	return c, nil
}

func (c *Client) tableRef() (*bigquery.Table, error) {
	if c == nil || c.dataset == nil {
		return nil, errClientNotInitialized
	}
	return c.dataset.Table(c.table), nil
}

// EnsureTable creates the ad events table with schema, day-partitioned on
// partitionField, when it does not exist yet.
func (c *Client) EnsureTable(ctx context.Context, schema bigquery.Schema, partitionField string) error {
	ref, err := c.tableRef()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	_, err = ref.Metadata(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return describeMetadataErr("table", c.table, err)
	}
	meta := &bigquery.TableMetadata{Schema: schema}
	if partitionField != "" {
		meta.TimePartitioning = &bigquery.TimePartitioning{Type: bigquery.DayPartitioningType, Field: partitionField}
	}
	if err := ref.Create(ctx, meta); err != nil && !isConflict(err) {
		return fmt.Errorf("create table %q: %w", c.table, err)
	}
	return nil
}

// Ping reads the table metadata.
func (c *Client) Ping(ctx context.Context) error {
	ref, err := c.tableRef()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()
	if _, err := ref.Metadata(ctx); err != nil {
		return describeMetadataErr("table", c.table, err)
	}
	return nil
}

// Table returns the configured ad events table id.
func (c *Client) Table() string {
	if c == nil {
		return ""
	}
	return c.table
}

// InsertRows streams rows into table through the legacy insertAll API.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}
	if len(rows) == 0 {
		return nil
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func describeMetadataErr(kind, id string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s %q does not exist", kind, id)
	}
	return fmt.Errorf("check %s %q: %w", kind, id, err)
}

func apiCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code
	}
	return 0
}

func isNotFound(err error) bool { return apiCode(err) == http.StatusNotFound }

func isConflict(err error) bool { return apiCode(err) == http.StatusConflict }
