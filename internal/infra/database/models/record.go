package models

import "time"

// Record is one stored document row for the Postgres backend. The
// document stays opaque JSON text; Version backs the conditional
// replace.
type Record struct {
	Key      string `gorm:"primaryKey;type:text"`
	Document string `gorm:"type:jsonb"`
	Version  int64  `gorm:"not null;default:1"`
	CDate    time.Time
	MDate    time.Time
}
