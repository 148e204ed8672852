package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"icongen/failures"
	"icongen/logger"
	"icongen/models"
	"icongen/rasterizer"
	"icongen/success"

	"github.com/dustin/go-humanize"
)

// ErrInputMissing marks a job whose SVG source does not exist
var ErrInputMissing = errors.New("input file not found")

// Summary is the outcome of a full run
type Summary struct {
	RunID         string
	Rasterizer    string
	Dir           string
	Started       time.Time
	Finished      time.Time
	SuccessCount  int
	FailCount     int
	Results       []models.JobResult
	PublishErrors []string
}

// Failed reports whether any job or publish step failed
func (s *Summary) Failed() bool {
	return s.FailCount > 0 || len(s.PublishErrors) > 0
}

// Driver runs conversion jobs one after another against a single assets directory
type Driver struct {
	RunID      string
	Dir        string
	Rasterizer string
	Rasterize  rasterizer.RasterizeFunc
	Out        io.Writer // human-readable progress
}

// Run processes every job in order. A failing job is logged and counted and
// never stops the run, so SuccessCount+FailCount always equals len(jobs).
func (d *Driver) Run(ctx context.Context, jobs []models.ConversionJob) *Summary {
	summary := &Summary{
		RunID:      d.RunID,
		Rasterizer: d.Rasterizer,
		Dir:        d.Dir,
		Started:    time.Now(),
		Results:    make([]models.JobResult, 0, len(jobs)),
	}

	for _, j := range jobs {
		result := d.processJob(ctx, j)
		if result.Status == models.StatusSuccess {
			summary.SuccessCount++
		} else {
			summary.FailCount++
		}
		summary.Results = append(summary.Results, result)
		d.record(result)
	}

	summary.Finished = time.Now()
	logger.Infof("Run %s finished: %d succeeded, %d failed", d.RunID, summary.SuccessCount, summary.FailCount)
	return summary
}

// processJob converts a single job and reports progress to d.Out
func (d *Driver) processJob(ctx context.Context, j models.ConversionJob) models.JobResult {
	result := models.JobResult{Job: j, Status: models.StatusFailed}
	inputPath := ResolvePath(d.Dir, j.Input)
	outputPath := ResolvePath(d.Dir, j.Output)

	if _, err := os.Stat(inputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrInputMissing, j.Input)
		}
		fmt.Fprintf(d.Out, "error: %v\n", err)
		logger.Errorf("Skipping %s: %v", j.Input, err)
		result.Error = err.Error()
		return result
	}

	fmt.Fprintf(d.Out, "Converting %s -> %s (%dx%d)\n", j.Input, j.Output, j.Width, j.Height)

	opts := rasterizer.Options{Width: j.Width, Height: j.Height}
	if err := d.Rasterize(ctx, inputPath, outputPath, opts); err != nil {
		return d.fail(result, fmt.Errorf("rasterization failed: %w", err))
	}

	size, sum, err := measureOutput(outputPath)
	if err != nil {
		return d.fail(result, fmt.Errorf("failed to read output: %w", err))
	}

	result.Status = models.StatusSuccess
	result.SizeBytes = size
	result.SHA256 = sum
	fmt.Fprintf(d.Out, "   done (%.2f KB)\n", result.SizeKB())
	logger.Debugf("Wrote %s: %s, sha256 %s", outputPath, humanize.Bytes(uint64(size)), sum)
	return result
}

func (d *Driver) fail(result models.JobResult, err error) models.JobResult {
	fmt.Fprintf(d.Out, "   error: %v\n", err)
	logger.Errorf("Job %s -> %s failed: %v", result.Job.Input, result.Job.Output, err)
	result.Error = err.Error()
	return result
}

// record stores the result in the run history when history is enabled.
// History errors never fail the job.
func (d *Driver) record(result models.JobResult) {
	if result.Status == models.StatusSuccess {
		if !success.Enabled() {
			return
		}
		if prev, err := success.LatestChecksum(result.Job.Output); err == nil && prev != "" {
			if prev == result.SHA256 {
				logger.Infof("%s is identical to the previous run", result.Job.Output)
			} else {
				logger.Infof("%s changed since the previous run", result.Job.Output)
			}
		}
		if err := success.StoreSuccess(d.RunID, result); err != nil {
			logger.Errorf("Failed to store success record for %s: %v", result.Job.Output, err)
		}
		return
	}

	if !failures.Enabled() {
		return
	}
	if err := failures.StoreFailure(d.RunID, result.Job, errors.New(result.Error)); err != nil {
		logger.Errorf("Failed to store failure record for %s: %v", result.Job.Output, err)
	}
}

// measureOutput returns the on-disk size and SHA-256 of a generated file
func measureOutput(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, "", err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, "", err
	}
	return info.Size(), hex.EncodeToString(h.Sum(nil)), nil
}

// PrintSummary writes the final counts followed by every configured output that
// exists on disk, with its size.
func PrintSummary(out io.Writer, dir string, jobs []models.ConversionJob, s *Summary) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Conversion finished. success: %d, fail: %d\n", s.SuccessCount, s.FailCount)

	listed := false
	for _, j := range jobs {
		info, err := os.Stat(ResolvePath(dir, j.Output))
		if err != nil || info.IsDir() {
			continue
		}
		if !listed {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Generated files:")
			listed = true
		}
		fmt.Fprintf(out, "   - %s (%.2f KB)\n", j.Output, float64(info.Size())/1024)
	}

	if len(s.PublishErrors) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Publishing failed for %d file(s):\n", len(s.PublishErrors))
		for _, e := range s.PublishErrors {
			fmt.Fprintf(out, "   - %s\n", e)
		}
	}
}

// ResolvePath joins p onto dir unless p is already absolute
func ResolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
