package models

import "time"

// OrderModel is the gorm persistence model for processing orders. Each
// operator has their own database file holding only their orders, so the
// username column is denormalized into every row for cross-file listings.
type OrderModel struct {
	ID             uint       `gorm:"primaryKey"`
	Username       string     `gorm:"size:255;not null;index"`
	Client         string     `gorm:"size:255;not null;index"`
	OrderNumber    string     `gorm:"size:255;not null;index"`
	ItemCount      int        `gorm:"not null"`
	EntryDate      time.Time  `gorm:"not null;index"`
	ProcessingDate *time.Time `gorm:"index"`
	CutTime        string     `gorm:"size:16"`
	Notes          string     `gorm:"size:500"`
	Value          float64    `gorm:"not null"`
	LoggedAt       time.Time  `gorm:"not null"`
}

func (OrderModel) TableName() string {
	return "orders"
}
