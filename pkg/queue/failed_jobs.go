package queue

import (
	"time"

	"gorm.io/gorm"
)

// FailedStore persists jobs that exhausted their retries.
type FailedStore interface {
	Save(job FailedJob) error
}

// FailedJobRecord is the row written by GormFailedStore. The table is
// created by the failed_jobs migration.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// GormFailedStore writes failed jobs to the database.
type GormFailedStore struct {
	db *gorm.DB
}

func NewGormFailedStore(db *gorm.DB) *GormFailedStore {
	return &GormFailedStore{db: db}
}

func (s *GormFailedStore) Save(job FailedJob) error {
	msg := ""
	if job.Err != nil {
		msg = job.Err.Error()
	}
	return s.db.Create(&FailedJobRecord{
		JobType:  job.Type,
		Payload:  string(job.Payload),
		Error:    msg,
		Attempts: job.Attempts,
		FailedAt: job.FailedAt,
	}).Error
}

// persistFailed always keeps the job in memory, then tries the store.
func (m *Manager) persistFailed(job FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, job)
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}
	if err := store.Save(job); err != nil {
		m.log.Error("persist failed job", "type", job.Type, "error", err)
	}
}
