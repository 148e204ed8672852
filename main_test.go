package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"icongen/logger"
	"icongen/report"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="#2196f3"/></svg>`

// testReportKey is long enough for HS256
const testReportKey = "0123456789abcdef0123456789abcdef"

// setupAssets points the run at a fresh assets directory containing the named SVGs
// and clears every optional feature.
func setupAssets(t *testing.T, inputs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range inputs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(squareSVG), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	t.Setenv("ICONGEN_ASSETS_DIR", dir)
	for _, env := range []string{
		"ICONGEN_RASTERIZER", "ICONGEN_MANIFEST", "ICONGEN_STRICT", "ICONGEN_DATA_DIR",
		"ICONGEN_PUBLISH", "ICONGEN_REPORT_PATH", "ICONGEN_REPORT_KEY", "ICONGEN_LOG_FILE",
	} {
		t.Setenv(env, "")
	}
	t.Setenv("ICONGEN_LOG_LEVEL", "error")
	return dir
}

// runCaptured calls run with stdout redirected and returns the exit code and output
func runCaptured(t *testing.T) (int, string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	stdout := os.Stdout
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	code := run()

	w.Close()
	os.Stdout = stdout
	return code, <-done
}

func pngsIn(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRunMissingRasterizer(t *testing.T) {
	dir := setupAssets(t, "icon.svg", "adaptive-icon.svg", "splash.svg", "favicon.svg")
	t.Setenv("ICONGEN_RASTERIZER", "no-such-rasterizer")

	code, out := runCaptured(t)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if pngs := pngsIn(t, dir); len(pngs) != 0 {
		t.Errorf("No job should run without a rasterizer, found %v", pngs)
	}
	if strings.Contains(out, "Converting") {
		t.Errorf("No conversion should be attempted: %s", out)
	}
}

func TestRunPartialInputs(t *testing.T) {
	dir := setupAssets(t, "icon.svg", "favicon.svg")

	code, out := runCaptured(t)
	if code != 0 {
		t.Errorf("Partial failure should exit 0 by default, got %d", code)
	}
	if !strings.Contains(out, "Conversion finished. success: 2, fail: 2") {
		t.Errorf("Unexpected summary: %s", out)
	}
	if pngs := pngsIn(t, dir); len(pngs) != 2 {
		t.Errorf("Expected exactly 2 PNG files, got %v", pngs)
	}
	for _, name := range []string{"icon.png", "favicon.png"} {
		if !strings.Contains(out, "   - "+name+" (") {
			t.Errorf("%s missing from generated files list: %s", name, out)
		}
	}
}

func TestRunStrictPartialFailure(t *testing.T) {
	setupAssets(t, "icon.svg", "favicon.svg")
	t.Setenv("ICONGEN_STRICT", "1")

	if code, _ := runCaptured(t); code != 2 {
		t.Errorf("Strict mode with failures should exit 2, got %d", code)
	}
}

func TestRunStrictAllSucceed(t *testing.T) {
	dir := setupAssets(t, "icon.svg", "adaptive-icon.svg", "splash.svg", "favicon.svg")
	t.Setenv("ICONGEN_STRICT", "true")

	code, out := runCaptured(t)
	if code != 0 {
		t.Errorf("Strict mode without failures should exit 0, got %d", code)
	}
	if !strings.Contains(out, "success: 4, fail: 0") {
		t.Errorf("Unexpected summary: %s", out)
	}
	if pngs := pngsIn(t, dir); len(pngs) != 4 {
		t.Errorf("Expected 4 PNG files, got %v", pngs)
	}
}

func TestRunInvalidManifest(t *testing.T) {
	dir := setupAssets(t, "icon.svg")
	manifest := filepath.Join(dir, "icons.yaml")
	if err := os.WriteFile(manifest, []byte("jobs: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ICONGEN_MANIFEST", "icons.yaml")

	if code, _ := runCaptured(t); code != 1 {
		t.Errorf("Invalid manifest should exit 1, got %d", code)
	}
	if pngs := pngsIn(t, dir); len(pngs) != 0 {
		t.Errorf("No job should run with an invalid manifest, found %v", pngs)
	}
}

func TestRunWritesSignedReport(t *testing.T) {
	dir := setupAssets(t, "icon.svg")
	t.Setenv("ICONGEN_REPORT_PATH", "report.json")
	t.Setenv("ICONGEN_REPORT_KEY", testReportKey)

	if code, _ := runCaptured(t); code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}

	if _, err := os.Stat(filepath.Join(dir, "report.json")); err != nil {
		t.Errorf("Expected JSON report: %v", err)
	}
	token, err := os.ReadFile(filepath.Join(dir, "report.json.jws"))
	if err != nil {
		t.Fatalf("Expected signed report: %v", err)
	}
	claims, err := report.Verify(strings.TrimSpace(string(token)), []byte(testReportKey))
	if err != nil {
		t.Fatalf("Signed report does not verify: %v", err)
	}
	if claims.Report.SuccessCount != 1 || claims.Report.FailCount != 3 {
		t.Errorf("Unexpected counts in report: %d/%d", claims.Report.SuccessCount, claims.Report.FailCount)
	}
}

func TestRunWithHistory(t *testing.T) {
	setupAssets(t, "icon.svg")
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("ICONGEN_DATA_DIR", dataDir)

	for i := 0; i < 2; i++ {
		if code, _ := runCaptured(t); code != 0 {
			t.Fatalf("Run %d: expected exit code 0, got %d", i+1, code)
		}
	}

	for _, name := range []string{"success.db", "failures.db"} {
		if _, err := os.Stat(filepath.Join(dataDir, name)); err != nil {
			t.Errorf("Expected history store %s: %v", name, err)
		}
	}
}

func TestSetupLoggingKeepsLevelWhenLogFileFails(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, logger.DEBUG)
	t.Cleanup(func() { logger.SetOutput(os.Stderr, logger.INFO) })

	t.Setenv("ICONGEN_LOG_FILE", filepath.Join(t.TempDir(), "missing", "icongen.log"))
	t.Setenv("ICONGEN_LOG_LEVEL", "error")
	setupLogging()

	logger.Warn("hidden warning")
	logger.Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden warning") {
		t.Errorf("Level from ICONGEN_LOG_LEVEL was not applied: %s", out)
	}
	if !strings.Contains(out, "visible error") {
		t.Errorf("Expected error line in output: %s", out)
	}
}
