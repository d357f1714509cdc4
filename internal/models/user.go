package models

import (
	"database/sql"
	"time"
)

// User maps to the `users` table. Only the donation channel touches it:
// GrowID is the external reference donations arrive with.
type User struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string         `gorm:"column:user_id;size:191;uniqueIndex;not null" json:"user_id"`
	GrowID    sql.NullString `gorm:"column:grow_id;size:191;uniqueIndex" json:"grow_id"`
	Balance   int64          `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
