package models

import "time"

// UserModel is the gorm persistence model for accounts, kept in the shared
// system database.
type UserModel struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string     `gorm:"size:255;not null"`
	Admin        bool       `gorm:"not null;default:false"`
	Active       bool       `gorm:"not null;default:true;index"`
	Deleted      bool       `gorm:"not null;default:false;index"`
	ResetPending bool       `gorm:"not null;default:false"`
	ArchivedAt   *time.Time `gorm:""`
	CreatedAt    time.Time  `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
