package success

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"icongen/models"

	pebble "github.com/cockroachdb/pebble"
)

// SuccessRecord is the history entry for one generated file
type SuccessRecord struct {
	Key       string    `json:"key"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"sha256"`
}

var db *pebble.DB

// RecordKey builds the store key for an output within a run.
// Run IDs sort by time, so iteration order is chronological.
func RecordKey(runID, output string) string {
	return runID + "/" + output
}

// Init initializes the success store
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open success store: %w", err)
	}
	return nil
}

// Close closes the success store
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// Enabled reports whether the store has been opened
func Enabled() bool {
	return db != nil
}

// StoreSuccess records a successful conversion for the given run
func StoreSuccess(runID string, result models.JobResult) error {
	if db == nil {
		return fmt.Errorf("success store not initialized")
	}

	key := RecordKey(runID, result.Job.Output)
	record := SuccessRecord{
		Key:       key,
		RunID:     runID,
		Timestamp: time.Now(),
		Input:     result.Job.Input,
		Output:    result.Job.Output,
		Width:     result.Job.Width,
		Height:    result.Job.Height,
		SizeBytes: result.SizeBytes,
		SHA256:    result.SHA256,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal success record: %w", err)
	}

	return db.Set([]byte(key), data, pebble.Sync)
}

// GetSuccess retrieves a success record by key. A missing record is (nil, nil).
func GetSuccess(key string) (*SuccessRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	data, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var record SuccessRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal success record: %w", err)
	}

	return &record, nil
}

// ListSuccessRecords returns all success records in key order
func ListSuccessRecords() ([]SuccessRecord, error) {
	return list(&pebble.IterOptions{})
}

// ListRun returns the success records of a single run
func ListRun(runID string) ([]SuccessRecord, error) {
	prefix := []byte(runID + "/")
	return list(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
}

func list(opts *pebble.IterOptions) ([]SuccessRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	iter, err := db.NewIter(opts)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []SuccessRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record SuccessRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return records, nil
}

// LatestChecksum returns the most recently recorded checksum for an output, or "".
// Used to report whether a regenerated file changed; it never skips work.
func LatestChecksum(output string) (string, error) {
	records, err := ListSuccessRecords()
	if err != nil {
		return "", err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Output == output {
			return records[i].SHA256, nil
		}
	}
	return "", nil
}

// CleanupOldRecords removes success records older than maxAge
func CleanupOldRecords(maxAge time.Duration) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("success store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record SuccessRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for _, key := range keysToDelete {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return 0, fmt.Errorf("failed to delete old success record: %w", err)
		}
	}

	return len(keysToDelete), nil
}

// CheckHealth performs a basic health check on the success database
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("success database not initialized")
	}

	_, closer, err := db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}

// prefixUpperBound returns the smallest key greater than every key with the prefix
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
