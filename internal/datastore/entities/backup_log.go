package entities

import "time"

// Backup actions recorded in the audit log.
const (
	BackupActionSnapshot = "Snapshot"
	BackupActionManual   = "Manual"
)

// Backup outcome values.
const (
	BackupStatusSuccess = "Success"
	BackupStatusFailed  = "Failed"
)

// BackupLog is one backup attempt on one target.
type BackupLog struct {
	ID        uint      `gorm:"primaryKey"`
	BackupID  string    `gorm:"type:varchar(36);index"`
	Timestamp time.Time `gorm:"not null;index"`
	Action    string    `gorm:"type:varchar(32);not null"`
	User      string    `gorm:"column:user_name;type:varchar(100);not null"`
	Target    string    `gorm:"type:varchar(16);not null"`
	Location  string    `gorm:"type:varchar(500)"`
	SizeBytes int64
	Status    string `gorm:"type:varchar(16);not null"`
	Error     string `gorm:"type:text"`
}

// TableName returns the table name for GORM.
func (BackupLog) TableName() string {
	return "backup_logs"
}
