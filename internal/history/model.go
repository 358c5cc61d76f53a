package history

import (
	"time"

	"gorm.io/datatypes"
)

// RecordModel sqlite table for archived reports
type RecordModel struct {
	ID        string `gorm:"primaryKey"`
	Target    string `gorm:"index"`
	Address   string
	OpenCount int
	ScannedAt time.Time `gorm:"index"`
	Elapsed   time.Duration
	Results   datatypes.JSON
}

// TableName overrides gorm's default table name
func (RecordModel) TableName() string {
	return "scan_records"
}
