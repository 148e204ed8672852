package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"icongen/config"
	"icongen/logger"
	"icongen/models"
	writerbackends "icongen/writerBackends"
)

// Publish copies every successfully generated file to each target backend.
// Failures are collected in s.PublishErrors and do not touch the job counters.
func Publish(ctx context.Context, s *Summary, targets []string) {
	for _, target := range targets {
		base, err := config.GetPublishAccessInfo(target)
		if err != nil {
			logger.Errorf("Skipping publish target %s: %v", target, err)
			s.PublishErrors = append(s.PublishErrors, fmt.Sprintf("%s: %v", target, err))
			continue
		}

		for _, r := range s.Results {
			if r.Status != models.StatusSuccess {
				continue
			}
			if err := publishFile(ctx, s.Dir, r.Job.Output, target, base); err != nil {
				logger.Errorf("Failed to publish %s to %s: %v", r.Job.Output, target, err)
				s.PublishErrors = append(s.PublishErrors, fmt.Sprintf("%s: %s: %v", target, r.Job.Output, err))
				continue
			}
			logger.Infof("Published %s to %s", r.Job.Output, target)
		}
	}
}

func publishFile(ctx context.Context, dir, output, target string, base map[string]string) error {
	reader, err := os.Open(ResolvePath(dir, output))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", output, err)
	}
	defer reader.Close()

	return writerbackends.WriteImage(ctx, prepareAccessInfo(base, output), reader, target)
}

// prepareAccessInfo copies the backend settings and adds the file name
func prepareAccessInfo(base map[string]string, output string) map[string]string {
	accessInfo := make(map[string]string, len(base)+1)
	for k, v := range base {
		accessInfo[k] = v
	}
	accessInfo["filename"] = filepath.Base(output)
	return accessInfo
}
