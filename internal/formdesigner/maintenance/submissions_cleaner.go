// Package maintenance содержит фоновые задачи обслуживания хранилища,
// запускаемые периодически по cron-расписанию.
//
// Задачи:
//   - SubmissionsCleaner: удаление отправок форм старше срока хранения
package maintenance

import (
	"log/slog"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"gorm.io/gorm"
)

const submissionsBatchSize = 500

type SubmissionsCleaner struct {
	db        *gorm.DB
	retention time.Duration
	batchSize int
}

func NewSubmissionsCleaner(db *gorm.DB, retentionDays int) *SubmissionsCleaner {
	return &SubmissionsCleaner{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		batchSize: submissionsBatchSize,
	}
}

// CleanSubmissions удаляет отправки старше срока хранения пачками, пока они не закончатся.
func (sc *SubmissionsCleaner) CleanSubmissions() {
	if sc.retention <= 0 {
		return
	}
	before := time.Now().Add(-sc.retention)
	slog.Info("Start clean old form submissions", "before", before)

	total := 0
	for {
		n, err := dao.DeleteSubmissionsBefore(sc.db, before, sc.batchSize)
		if err != nil {
			slog.Error("Delete old form submissions", "deleted", total, "err", err)
			return
		}
		total += n
		if n < sc.batchSize {
			break
		}
	}
	slog.Info("Finish clean old form submissions", "deleted", total)
}
