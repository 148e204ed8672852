package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"icongen/job"
	"icongen/models"
)

// Report is the machine-readable record of one conversion run
type Report struct {
	RunID         string             `json:"run_id"`
	Rasterizer    string             `json:"rasterizer"`
	Dir           string             `json:"dir"`
	Started       time.Time          `json:"started"`
	Finished      time.Time          `json:"finished"`
	SuccessCount  int                `json:"success_count"`
	FailCount     int                `json:"fail_count"`
	Results       []models.JobResult `json:"results"`
	PublishErrors []string           `json:"publish_errors,omitempty"`
}

// FromSummary converts a driver summary into a report
func FromSummary(s *job.Summary) Report {
	return Report{
		RunID:         s.RunID,
		Rasterizer:    s.Rasterizer,
		Dir:           s.Dir,
		Started:       s.Started,
		Finished:      s.Finished,
		SuccessCount:  s.SuccessCount,
		FailCount:     s.FailCount,
		Results:       s.Results,
		PublishErrors: s.PublishErrors,
	}
}

// Write writes the report as indented JSON
func Write(path string, r Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
