package writerbackends

import (
	"context"
	"fmt"
	"io"

	"icongen/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadToS3WithCreds uploads content from an io.Reader to an S3 object under
// prefix/filename, initializing its own client from static credentials.
func UploadToS3WithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	client := s3.New(s3Options(accessInfo))
	input := s3PutInput(accessInfo, reader)

	if _, err := manager.NewUploader(client).Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", *input.Key, *input.Bucket, err)
	}

	logger.Infof("Uploaded object '%s' to bucket '%s'", *input.Key, *input.Bucket)
	return nil
}

// s3Options builds a client configuration from static credentials
func s3Options(accessInfo map[string]string) s3.Options {
	return s3.Options{
		Region:      accessInfo["region"],
		Credentials: credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], ""),
	}
}

// s3PutInput describes one PNG object at prefix/filename
func s3PutInput(accessInfo map[string]string, reader io.Reader) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(accessInfo["bucket"]),
		Key:         aws.String(objectKey(accessInfo["prefix"], accessInfo["filename"])),
		Body:        reader,
		ContentType: aws.String("image/png"),
	}
}
