package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"icongen/job"
	"icongen/models"
)

var testKey = []byte("test-secret-key-for-report-signing-32b!")

func sampleSummary() *job.Summary {
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return &job.Summary{
		RunID:        "20261018T090000.000Z-abcdefghijkl",
		Rasterizer:   "oksvg",
		Dir:          "/assets",
		Started:      start,
		Finished:     start.Add(2 * time.Second),
		SuccessCount: 1,
		FailCount:    1,
		Results: []models.JobResult{
			{
				Job:       models.ConversionJob{Input: "icon.svg", Output: "icon.png", Width: 1024, Height: 1024},
				Status:    models.StatusSuccess,
				SizeBytes: 2048,
				SHA256:    "deadbeef",
			},
			{
				Job:    models.ConversionJob{Input: "splash.svg", Output: "splash.png", Width: 1242, Height: 2436},
				Status: models.StatusFailed,
				Error:  "input file not found: splash.svg",
			},
		},
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := FromSummary(sampleSummary())

	if err := Write(path, r); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if got.RunID != r.RunID || got.SuccessCount != 1 || got.FailCount != 1 {
		t.Errorf("Unexpected report header: %+v", got)
	}
	if len(got.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got.Results))
	}
	if got.Results[0].SizeBytes != 2048 || got.Results[0].SHA256 != "deadbeef" {
		t.Errorf("Unexpected first result: %+v", got.Results[0])
	}
	if got.Results[1].Status != models.StatusFailed || got.Results[1].Error == "" {
		t.Errorf("Unexpected second result: %+v", got.Results[1])
	}
	if !got.Finished.Equal(r.Finished) {
		t.Errorf("Expected finish time %v, got %v", r.Finished, got.Finished)
	}
}

func TestSignAndVerify(t *testing.T) {
	r := FromSummary(sampleSummary())

	token, err := Sign(r, testKey)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Expected compact JWS, got %q", token)
	}

	claims, err := Verify(token, testKey)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != r.RunID || claims.Issuer != Issuer {
		t.Errorf("Unexpected claims: sub=%s iss=%s", claims.Subject, claims.Issuer)
	}
	if claims.Report.SuccessCount != 1 || len(claims.Report.Results) != 2 {
		t.Errorf("Report not carried in claims: %+v", claims.Report)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	token, err := Sign(FromSummary(sampleSummary()), testKey)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	otherKey := []byte("another-secret-key-that-is-32-bytes-long")
	if _, err := Verify(token, otherKey); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	if _, err := Verify("", testKey); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := Verify("not.a.token", testKey); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestSignShortKey(t *testing.T) {
	if _, err := Sign(FromSummary(sampleSummary()), []byte("short")); !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("Expected ErrKeyTooShort, got %v", err)
	}
}

func TestWriteSigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json.jws")
	if err := WriteSigned(path, FromSummary(sampleSummary()), testKey); err != nil {
		t.Fatalf("WriteSigned failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read signed report: %v", err)
	}
	if _, err := Verify(strings.TrimSpace(string(data)), testKey); err != nil {
		t.Errorf("Signed report does not verify: %v", err)
	}
}
