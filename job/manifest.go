package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"icongen/models"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk form of a job list
//
//	jobs:
//	  - input: icon.svg
//	    output: icon.png
//	    width: 1024
//	    height: 1024
type Manifest struct {
	Jobs []models.ConversionJob `yaml:"jobs"`
}

// DefaultJobs returns the built-in asset list in processing order
func DefaultJobs() []models.ConversionJob {
	return []models.ConversionJob{
		{Input: "icon.svg", Output: "icon.png", Width: 1024, Height: 1024},
		{Input: "adaptive-icon.svg", Output: "adaptive-icon.png", Width: 1024, Height: 1024},
		{Input: "splash.svg", Output: "splash.png", Width: 1242, Height: 2436},
		{Input: "favicon.svg", Output: "favicon.png", Width: 48, Height: 48},
	}
}

// LoadJobs returns the jobs from the manifest at path, or DefaultJobs when path is empty
func LoadJobs(path string) ([]models.ConversionJob, error) {
	if path == "" {
		return DefaultJobs(), nil
	}
	return ReadManifest(path)
}

// ReadManifest reads and validates a YAML job manifest
func ReadManifest(path string) ([]models.ConversionJob, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var m Manifest
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	if err := ValidateJobs(m.Jobs); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return m.Jobs, nil
}

// ValidateJobs checks that every job has paths, positive dimensions and a unique output.
// Output file names must be unique too, since publish targets receive files flattened.
func ValidateJobs(jobs []models.ConversionJob) error {
	if len(jobs) == 0 {
		return errors.New("no jobs defined")
	}

	outputs := make(map[string]int, len(jobs))
	names := make(map[string]int, len(jobs))
	for i, j := range jobs {
		if strings.TrimSpace(j.Input) == "" {
			return fmt.Errorf("job %d: input is empty", i+1)
		}
		if strings.TrimSpace(j.Output) == "" {
			return fmt.Errorf("job %d: output is empty", i+1)
		}
		if j.Width <= 0 || j.Height <= 0 {
			return fmt.Errorf("job %d (%s): width and height must be positive, got %dx%d", i+1, j.Input, j.Width, j.Height)
		}
		if prev, dup := outputs[j.Output]; dup {
			return fmt.Errorf("job %d: output %s already produced by job %d", i+1, j.Output, prev)
		}
		name := filepath.Base(filepath.ToSlash(j.Output))
		if prev, dup := names[name]; dup {
			return fmt.Errorf("job %d: output %s has the same file name as job %d", i+1, j.Output, prev)
		}
		outputs[j.Output] = i + 1
		names[name] = i + 1
	}
	return nil
}
