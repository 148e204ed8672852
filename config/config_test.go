package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestAssetsDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ICONGEN_ASSETS_DIR", dir)

	got, err := GetAssetsDir()
	if err != nil {
		t.Fatalf("GetAssetsDir failed: %v", err)
	}
	if got != dir {
		t.Errorf("Expected assets dir %s, got %s", dir, got)
	}
}

func TestAssetsDirIsAbsolute(t *testing.T) {
	t.Setenv("ICONGEN_ASSETS_DIR", "relative/assets")

	got, err := GetAssetsDir()
	if err != nil {
		t.Fatalf("GetAssetsDir failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Expected absolute path, got %s", got)
	}
	if filepath.Base(got) != "assets" {
		t.Errorf("Expected path ending in assets, got %s", got)
	}
}

func TestAssetsDirDefault(t *testing.T) {
	t.Setenv("ICONGEN_ASSETS_DIR", "")

	got, err := GetAssetsDir()
	if err != nil {
		t.Fatalf("GetAssetsDir failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Expected absolute default assets dir, got %s", got)
	}
}

func TestIsUnder(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !isUnder(filepath.Join(root, "go-build123", "exe"), root) {
		t.Error("Expected nested path to be under root")
	}
	if isUnder(filepath.Dir(root), root) {
		t.Error("Parent should not be under root")
	}
	if isUnder(root+"-sibling", root) {
		t.Error("Sibling with shared prefix should not be under root")
	}
}

func TestRasterizerDefault(t *testing.T) {
	t.Setenv("ICONGEN_RASTERIZER", "")
	if got := GetRasterizer(); got != DefaultRasterizer {
		t.Errorf("Expected default rasterizer %s, got %s", DefaultRasterizer, got)
	}

	t.Setenv("ICONGEN_RASTERIZER", " Magick ")
	if got := GetRasterizer(); got != "magick" {
		t.Errorf("Expected magick, got %s", got)
	}
}

func TestManifestPathResolution(t *testing.T) {
	t.Setenv("ICONGEN_MANIFEST", "")
	if got := GetManifestPath("/assets"); got != "" {
		t.Errorf("Expected empty manifest path, got %s", got)
	}

	t.Setenv("ICONGEN_MANIFEST", "jobs.yaml")
	if got := GetManifestPath("/assets"); got != filepath.Join("/assets", "jobs.yaml") {
		t.Errorf("Expected manifest inside assets dir, got %s", got)
	}

	t.Setenv("ICONGEN_MANIFEST", "/etc/icongen/jobs.yaml")
	if got := GetManifestPath("/assets"); got != "/etc/icongen/jobs.yaml" {
		t.Errorf("Expected absolute manifest path untouched, got %s", got)
	}
}

func TestStrict(t *testing.T) {
	for _, tt := range []struct {
		val  string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"no", false},
		{"0", false},
	} {
		t.Setenv("ICONGEN_STRICT", tt.val)
		if got := IsStrict(); got != tt.want {
			t.Errorf("ICONGEN_STRICT=%q: expected %v, got %v", tt.val, tt.want, got)
		}
	}
}

func TestHistoryDBPaths(t *testing.T) {
	customDir := "/tmp/icongen-test-data"
	t.Setenv("ICONGEN_DATA_DIR", customDir)

	if got := GetSuccessDBPath(); got != filepath.Join(customDir, "success.db") {
		t.Errorf("Unexpected success path %s", got)
	}
	if got := GetFailuresDBPath(); got != filepath.Join(customDir, "failures.db") {
		t.Errorf("Unexpected failures path %s", got)
	}
}

func TestPublishTargets(t *testing.T) {
	t.Setenv("ICONGEN_PUBLISH", " s3, ,dir ")
	got := GetPublishTargets()
	want := []string{"s3", "dir"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	t.Setenv("ICONGEN_PUBLISH", "")
	if got := GetPublishTargets(); len(got) != 0 {
		t.Errorf("Expected no targets, got %v", got)
	}
}

func TestPublishAccessInfo(t *testing.T) {
	t.Setenv("ICONGEN_S3_BUCKET", "assets-bucket")
	t.Setenv("ICONGEN_S3_REGION", "eu-west-1")
	t.Setenv("ICONGEN_S3_ACCESS_KEY", "")

	info, err := GetPublishAccessInfo("s3")
	if err != nil {
		t.Fatalf("GetPublishAccessInfo failed: %v", err)
	}
	if info["bucket"] != "assets-bucket" || info["region"] != "eu-west-1" {
		t.Errorf("Unexpected access info: %v", info)
	}
	if _, ok := info["accessKey"]; ok {
		t.Error("Unset variables should be omitted")
	}

	if _, err := GetPublishAccessInfo("ftp"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestReportSettings(t *testing.T) {
	t.Setenv("ICONGEN_REPORT_PATH", "report.json")
	t.Setenv("ICONGEN_REPORT_KEY", "")

	if got := GetReportPath("/assets"); got != filepath.Join("/assets", "report.json") {
		t.Errorf("Unexpected report path %s", got)
	}
	if GetReportKey() != nil {
		t.Error("Expected nil report key when unset")
	}

	t.Setenv("ICONGEN_REPORT_KEY", "k")
	if string(GetReportKey()) != "k" {
		t.Error("Expected report key from environment")
	}
}
