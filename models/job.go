package models

// ConversionJob is one SVG to PNG conversion with fixed paths and pixel dimensions.
// Paths are relative to the assets directory unless absolute.
type ConversionJob struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
	Width  int    `json:"width" yaml:"width"`   // pixels
	Height int    `json:"height" yaml:"height"` // pixels
}

type JobStatus string

const (
	StatusSuccess JobStatus = "success"
	StatusFailed  JobStatus = "failed"
)

// JobResult is the outcome of a single conversion
type JobResult struct {
	Job       ConversionJob `json:"job"`
	Status    JobStatus     `json:"status"`
	SizeBytes int64         `json:"size_bytes,omitempty"`
	SHA256    string        `json:"sha256,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SizeKB returns the output size in kilobytes (1 KB = 1024 bytes).
func (r JobResult) SizeKB() float64 {
	return float64(r.SizeBytes) / 1024
}
