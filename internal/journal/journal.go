package journal

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Attempt statuses
const (
	StatusDryRun = "dry-run"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Attempt is one recorded translation/delivery outcome
type Attempt struct {
	ID            string    `json:"id"`
	IMEI          string    `json:"imei"`
	EventCode     int       `json:"event_code"`
	ActivityIDs   string    `json:"activity_ids"`
	BaseMessageID int       `json:"base_message_id"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Journal records every translation attempt for later inspection.
// It is append-only; nothing is ever replayed from it.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewJournal creates a new delivery journal
func NewJournal(db *sql.DB, logger *zap.Logger) *Journal {
	return &Journal{
		db:     db,
		logger: logger,
	}
}

// Record appends one attempt
func (j *Journal) Record(imei string, eventCode int, activityIDs []int, baseMessageID int, status, errDetail string) error {
	ids := make([]string, len(activityIDs))
	for i, id := range activityIDs {
		ids[i] = strconv.Itoa(id)
	}

	attemptID := uuid.New().String()
	_, err := j.db.Exec(`
		INSERT INTO delivery_attempts (id, imei, event_code, activity_ids, base_message_id, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, attemptID, imei, eventCode, strings.Join(ids, ","), baseMessageID, status, errDetail, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	j.logger.Debug("Delivery attempt recorded",
		zap.String("id", attemptID),
		zap.String("imei", imei),
		zap.String("status", status),
	)
	return nil
}

// Recent returns the most recent attempts, newest first
func (j *Journal) Recent(limit int) ([]Attempt, error) {
	rows, err := j.db.Query(`
		SELECT id, imei, event_code, activity_ids, base_message_id, status, COALESCE(error, ''), created_at
		FROM delivery_attempts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.IMEI, &a.EventCode, &a.ActivityIDs, &a.BaseMessageID, &a.Status, &a.Error, &a.CreatedAt); err != nil {
			j.logger.Error("Failed to scan attempt row", zap.Error(err))
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountByStatus returns attempt counts grouped by status
func (j *Journal) CountByStatus() (map[string]int, error) {
	rows, err := j.db.Query(`
		SELECT status, COUNT(*) FROM delivery_attempts GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			continue
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
