package writerbackends

import (
	"context"
	"fmt"
	"io"
)

// requiredKeys lists the accessInfo entries each backend cannot work without
var requiredKeys = map[string][]string{
	"dir":  {"baseDir", "filename"},
	"s3":   {"bucket", "region", "accessKey", "secretKey", "filename"},
	"gcs":  {"bucket", "filename"},
	"sftp": {"host", "user", "remoteDir", "filename"},
}

// ValidateAccessInfo checks that accessInfo carries everything backendType needs
func ValidateAccessInfo(backendType string, accessInfo map[string]string) error {
	keys, ok := requiredKeys[backendType]
	if !ok {
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	var missing []string
	for _, k := range keys {
		if accessInfo[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("backend %s: missing required accessInfo keys: %v", backendType, missing)
	}
	return nil
}

// WriteImage copies one generated file to the given backend: dir, s3, gcs or sftp
func WriteImage(ctx context.Context, accessInfo map[string]string, reader io.Reader, backendType string) error {
	if err := ValidateAccessInfo(backendType, accessInfo); err != nil {
		return err
	}

	switch backendType {
	case "dir":
		if err := UploadToDir(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to copy to directory: %w", err)
		}
	case "s3":
		if err := UploadToS3WithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "gcs":
		if err := UploadToGCS(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "sftp":
		if err := UploadToSFTPWithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	}
	return nil
}

// objectKey joins an optional prefix and the file name with forward slashes
func objectKey(prefix, filename string) string {
	if prefix == "" {
		return filename
	}
	for len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix + "/" + filename
}
