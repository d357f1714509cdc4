package models

import (
	"time"

	"gorm.io/datatypes"
)

// CallbackLog maps to the `callback_logs` table: one row per gateway delivery,
// kept for forensic replay.
type CallbackLog struct {
	ID            uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestID     string         `gorm:"column:request_id;size:64;index" json:"request_id"`
	Provider      string         `gorm:"column:provider;size:32;index" json:"provider"`
	Path          string         `gorm:"column:path;size:255" json:"path"`
	OrderID       string         `gorm:"column:order_id;size:191;index" json:"order_id"`
	Outcome       string         `gorm:"column:outcome;size:20" json:"outcome"`
	Applied       bool           `gorm:"column:applied" json:"applied"`
	Duplicate     bool           `gorm:"column:duplicate" json:"duplicate"`
	RejectionKind string         `gorm:"column:rejection_kind;size:64" json:"rejection_kind,omitempty"`
	Reason        string         `gorm:"column:reason;type:text" json:"reason,omitempty"`
	HTTPStatus    int            `gorm:"column:http_status" json:"http_status"`
	Headers       datatypes.JSON `gorm:"column:headers" json:"headers"`
	RawBody       string         `gorm:"column:raw_body;type:text" json:"raw_body"`
	CreatedAt     time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (CallbackLog) TableName() string {
	return "callback_logs"
}
