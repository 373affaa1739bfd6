package models

import "time"

// RegistryEntryModel is the gorm persistence model for the coordination
// registry in the shared system database. The (type, key) pair is the
// natural identity, so it doubles as the primary key.
type RegistryEntryModel struct {
	Type        string    `gorm:"size:16;primaryKey;column:type"`
	Key         string    `gorm:"size:255;primaryKey;column:key"`
	Value       string    `gorm:"size:500;not null"`
	LastUpdated time.Time `gorm:"not null;index"`
}

func (RegistryEntryModel) TableName() string {
	return "registry_entries"
}
