package engagement

import (
	"encoding/json"
	"fmt"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// AdEventRow mirrors the ad_events BigQuery schema.
type AdEventRow struct {
	EventID    string             `bigquery:"event_id"`
	EventType  string             `bigquery:"event_type"`
	OccurredAt time.Time          `bigquery:"occurred_at"`
	AdID       string             `bigquery:"ad_id"`
	OwnerID    string             `bigquery:"owner_id"`
	Slug       string             `bigquery:"slug"`
	IP         *string            `bigquery:"ip"`
	UserAgent  *string            `bigquery:"user_agent"`
	Total      int64              `bigquery:"total"`
	Payload    cbigquery.NullJSON `bigquery:"payload"`
}

// AdEventPartitionField is the day-partitioning column of ad_events.
const AdEventPartitionField = "occurred_at"

// AdEventSchema matches AdEventRow and is used when the worker creates the
// table itself.
var AdEventSchema = cbigquery.Schema{
	{Name: "event_id", Type: cbigquery.StringFieldType, Required: true},
	{Name: "event_type", Type: cbigquery.StringFieldType, Required: true},
	{Name: "occurred_at", Type: cbigquery.TimestampFieldType, Required: true},
	{Name: "ad_id", Type: cbigquery.StringFieldType, Required: true},
	{Name: "owner_id", Type: cbigquery.StringFieldType},
	{Name: "slug", Type: cbigquery.StringFieldType},
	{Name: "ip", Type: cbigquery.StringFieldType},
	{Name: "user_agent", Type: cbigquery.StringFieldType},
	{Name: "total", Type: cbigquery.IntegerFieldType},
	{Name: "payload", Type: cbigquery.JSONFieldType},
}

// EncodeJSON serializes the payload for a BigQuery JSON column.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case cbigquery.NullJSON:
		return value, nil
	case json.RawMessage:
		if len(value) == 0 {
			return cbigquery.NullJSON{}, nil
		}
		return cbigquery.NullJSON{Valid: true, JSONVal: string(value)}, nil
	}

	marshaled, err := json.Marshal(payload)
	if err != nil {
		return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(marshaled)}, nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
