package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Store tracks, per device, the highest position identifier already
// forwarded. The mapping is persisted as a JSON file keyed by device
// id so a restart resumes without re-forwarding old positions.
type Store struct {
	path    string
	logger  *zap.Logger
	mu      sync.Mutex
	cursors map[int64]int64
}

// NewStore creates a cursor store backed by the given file path
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:    path,
		logger:  logger,
		cursors: make(map[int64]int64),
	}
}

// Load restores the persisted mapping. A missing or corrupt file
// yields an empty mapping and is logged as non-fatal.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No persisted cursor file, starting fresh",
				zap.String("path", s.path),
			)
		} else {
			s.logger.Warn("Failed to read cursor file, starting fresh",
				zap.Error(err),
				zap.String("path", s.path),
			)
		}
		return
	}

	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Corrupt cursor file, starting fresh",
			zap.Error(err),
			zap.String("path", s.path),
		)
		return
	}

	cursors := make(map[int64]int64, len(raw))
	for key, posID := range raw {
		deviceID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("Skipping invalid device id in cursor file",
				zap.String("key", key),
			)
			continue
		}
		cursors[deviceID] = posID
	}

	s.mu.Lock()
	s.cursors = cursors
	s.mu.Unlock()

	s.logger.Info("Loaded persisted cursors",
		zap.Int("count", len(cursors)),
	)
}

// Get returns the last forwarded position id for the device,
// defaulting to 0 for unseen devices.
func (s *Store) Get(deviceID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[deviceID]
}

// Advance unconditionally records positionID as the new cursor for
// deviceID. Callers only advance with a greater id, the store itself
// does not reject out-of-order updates.
func (s *Store) Advance(deviceID, positionID int64) {
	s.mu.Lock()
	s.cursors[deviceID] = positionID
	s.mu.Unlock()
}

// Persist serializes the entire mapping to the cursor file,
// overwriting prior content. The write goes through a temp file and
// rename so a crash mid-write cannot corrupt the previous state.
func (s *Store) Persist() error {
	s.mu.Lock()
	raw := make(map[string]int64, len(s.cursors))
	for deviceID, posID := range s.cursors {
		raw[strconv.FormatInt(deviceID, 10)] = posID
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cursors: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cursor file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cursor file: %w", err)
	}
	return nil
}

// Count returns the number of devices with a tracked cursor
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}
