package models

import "time"

// OrderStatus is the settlement state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPaid      OrderStatus = "Paid"
	OrderCancelled OrderStatus = "Cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// Order maps to the `topup_history` table. Rows are created by the ordering
// side; the callback service only ever moves Status out of Pending.
type Order struct {
	ID        uint        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   string      `gorm:"column:order_id;size:191;uniqueIndex;not null" json:"order_id"`
	UserID    string      `gorm:"column:user_id;size:191;not null" json:"user_id"`
	Amount    int64       `gorm:"column:amount;not null" json:"amount"`
	Status    OrderStatus `gorm:"column:status;size:20;not null;default:Pending;index" json:"status"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "topup_history"
}
