package entity

import (
	"encoding/json"
	"time"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Entry is one row of the audit_logs table.
type Entry struct {
	ID         int64           `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"userId"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   string          `db:"entity_id" json:"entityId"`
	BeforeData json.RawMessage `db:"before_data" json:"beforeData,omitempty"`
	AfterData  json.RawMessage `db:"after_data" json:"afterData,omitempty"`
	IPAddress  *string         `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent  *string         `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Snapshot marshals v for BeforeData/AfterData. Unmarshalable values are
// recorded as null rather than failing the caller.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
