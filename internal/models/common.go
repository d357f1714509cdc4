package models

import "time"

// Setting maps to the `admin_settings` table (single-row config table).
type Setting struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GuildID    string `gorm:"column:guild_id;size:191;uniqueIndex" json:"guild_id"`
	DonateRate int64  `gorm:"column:donate_rate;not null;default:100" json:"donate_rate"`
}

func (Setting) TableName() string {
	return "admin_settings"
}

// StockMessage maps to the `stock_messages` table. NeedsRefresh tells the
// display side that a message rendered from order data is stale.
type StockMessage struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChannelID    string    `gorm:"column:channel_id;size:191" json:"channel_id"`
	MessageID    string    `gorm:"column:message_id;size:191" json:"message_id"`
	NeedsRefresh bool      `gorm:"column:needs_refresh;not null;default:false" json:"needs_refresh"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (StockMessage) TableName() string {
	return "stock_messages"
}
