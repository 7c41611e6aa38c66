// internal/model/campaign.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Campaign struct {
	ID              int64           `db:"id" json:"id"`
	ClientID        int64           `db:"client_id" json:"client_id"`
	Name            string          `db:"name" json:"name"`
	TemplateID      int64           `db:"template_id" json:"template_id"`
	GroupID         int64           `db:"group_id" json:"group_id"`
	VariableMapping VariableMapping `db:"variable_mapping" json:"variable_mapping"`
	Status          CampaignStatus  `db:"status" json:"status"`
	ScheduledFor    *time.Time      `db:"scheduled_for" json:"scheduled_for,omitempty"`
	SentCount       int             `db:"sent_count" json:"sent_count"`
	DeliveredCount  int             `db:"delivered_count" json:"delivered_count"`
	FailedCount     int             `db:"failed_count" json:"failed_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

// VariableMapping maps template placeholder names to contact field paths,
// e.g. {"name": "name", "company": "custom_fields.company"}.
// Stored as a JSONB column.
type VariableMapping map[string]string

func (m VariableMapping) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *VariableMapping) Scan(src interface{}) error {
	if src == nil {
		*m = VariableMapping{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("variable_mapping: cannot scan %T", src)
		}
		b = []byte(s)
	}
	if len(b) == 0 {
		*m = VariableMapping{}
		return nil
	}
	return json.Unmarshal(b, m)
}
