package failures

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"icongen/models"

	pebble "github.com/cockroachdb/pebble"
)

// FailureRecord is the history entry for one failed conversion
type FailureRecord struct {
	Key       string               `json:"key"`
	RunID     string               `json:"run_id"`
	Timestamp time.Time            `json:"timestamp"`
	Error     string               `json:"error"`
	Job       models.ConversionJob `json:"job"`
}

var db *pebble.DB

// RecordKey builds the store key for a job output within a run
func RecordKey(runID, output string) string {
	return runID + "/" + output
}

// Init initializes the failure store
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open failure store: %w", err)
	}
	return nil
}

// Close closes the failure store
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

// StoreFailure records a failed conversion for the given run
func StoreFailure(runID string, job models.ConversionJob, err error) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}

	key := RecordKey(runID, job.Output)
	record := FailureRecord{
		Key:       key,
		RunID:     runID,
		Timestamp: time.Now(),
		Error:     err.Error(),
		Job:       job,
	}

	data, jsonErr := json.Marshal(record)
	if jsonErr != nil {
		return fmt.Errorf("failed to marshal failure record: %w", jsonErr)
	}

	return db.Set([]byte(key), data, pebble.Sync)
}

// GetFailure retrieves a failure record by key. A missing record is (nil, nil).
func GetFailure(key string) (*FailureRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	data, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get failure: %w", err)
	}
	defer closer.Close()

	var record FailureRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failure record: %w", err)
	}

	return &record, nil
}

// ListFailures returns all failure records in key order
func ListFailures() ([]FailureRecord, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	var failures []FailureRecord
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var record FailureRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		failures = append(failures, record)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}

	return failures, nil
}

// CountRun returns how many failures were recorded for a run
func CountRun(runID string) (int, error) {
	all, err := ListFailures()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range all {
		if r.RunID == runID {
			n++
		}
	}
	return n, nil
}

// CleanupOldRecords removes failure records older than maxAge
func CleanupOldRecords(maxAge time.Duration) (int, error) {
	all, err := ListFailures()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, r := range all {
		if !r.Timestamp.Before(cutoff) {
			continue
		}
		if err := db.Delete([]byte(r.Key), pebble.Sync); err != nil {
			return removed, fmt.Errorf("failed to delete old failure record: %w", err)
		}
		removed++
	}
	return removed, nil
}
