package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRasterizer is the built-in pure Go backend, always available.
const DefaultRasterizer = "oksvg"

// GetAssetsDir resolves the working directory holding the SVG sources and PNG outputs.
// Priority: ICONGEN_ASSETS_DIR > directory of the executable > current directory.
// The executable's directory is skipped when it lives under the system temp dir,
// which is where `go run` places its build output.
func GetAssetsDir() (string, error) {
	if dir := os.Getenv("ICONGEN_ASSETS_DIR"); dir != "" {
		return filepath.Abs(dir)
	}

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		if !isUnder(dir, os.TempDir()) {
			return dir, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return wd, nil
}

func isUnder(path, root string) bool {
	if root == "" {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GetRasterizer returns the configured rasterizer backend name.
func GetRasterizer() string {
	if name := strings.TrimSpace(os.Getenv("ICONGEN_RASTERIZER")); name != "" {
		return strings.ToLower(name)
	}
	return DefaultRasterizer
}

// GetManifestPath returns the job manifest path, or "" to use the built-in job list.
// Relative paths are resolved against the assets directory.
func GetManifestPath(assetsDir string) string {
	return resolveIn(assetsDir, os.Getenv("ICONGEN_MANIFEST"))
}

// IsStrict reports whether partial failures should produce a non-zero exit status.
func IsStrict() bool {
	return getBool("ICONGEN_STRICT")
}

// GetDataDir returns the run history directory. Empty disables history.
func GetDataDir() string {
	return os.Getenv("ICONGEN_DATA_DIR")
}

// GetSuccessDBPath returns the full path to the success history database.
// Path: {DATA_DIR}/success.db
func GetSuccessDBPath() string {
	return filepath.Join(GetDataDir(), "success.db")
}

// GetFailuresDBPath returns the full path to the failures history database.
// Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetLogFile returns an optional file that receives a copy of the log.
func GetLogFile() string {
	return os.Getenv("ICONGEN_LOG_FILE")
}

// GetLogLevel returns the configured log level name (debug, info, warn, error).
func GetLogLevel() string {
	if lvl := os.Getenv("ICONGEN_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// GetPublishTargets returns the backends generated files are copied to after the run.
func GetPublishTargets() []string {
	var targets []string
	for _, t := range strings.Split(os.Getenv("ICONGEN_PUBLISH"), ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

// publishKeys maps each backend's accessInfo keys to their environment variables.
var publishKeys = map[string]map[string]string{
	"dir": {
		"baseDir": "ICONGEN_PUBLISH_DIR",
		"folder":  "ICONGEN_PUBLISH_FOLDER",
	},
	"s3": {
		"bucket":    "ICONGEN_S3_BUCKET",
		"region":    "ICONGEN_S3_REGION",
		"accessKey": "ICONGEN_S3_ACCESS_KEY",
		"secretKey": "ICONGEN_S3_SECRET_KEY",
		"prefix":    "ICONGEN_S3_PREFIX",
	},
	"gcs": {
		"bucket":          "ICONGEN_GCS_BUCKET",
		"credentialsFile": "ICONGEN_GCS_CREDENTIALS",
		"prefix":          "ICONGEN_GCS_PREFIX",
	},
	"sftp": {
		"host":       "ICONGEN_SFTP_HOST",
		"port":       "ICONGEN_SFTP_PORT",
		"user":       "ICONGEN_SFTP_USER",
		"password":   "ICONGEN_SFTP_PASSWORD",
		"privateKey": "ICONGEN_SFTP_PRIVATE_KEY",
		"remoteDir":  "ICONGEN_SFTP_REMOTE_DIR",
		"hostKey":    "ICONGEN_SFTP_HOST_KEY",
	},
}

// GetPublishAccessInfo collects the accessInfo map for a publish backend from the environment.
// Unset variables are omitted.
func GetPublishAccessInfo(backend string) (map[string]string, error) {
	keys, ok := publishKeys[backend]
	if !ok {
		return nil, fmt.Errorf("unknown publish backend: %s", backend)
	}
	info := make(map[string]string)
	for key, env := range keys {
		if v := os.Getenv(env); v != "" {
			info[key] = v
		}
	}
	return info, nil
}

// GetReportPath returns where the JSON run report is written, or "" when disabled.
func GetReportPath(assetsDir string) string {
	return resolveIn(assetsDir, os.Getenv("ICONGEN_REPORT_PATH"))
}

// GetReportKey returns the HMAC key used to sign the run report.
func GetReportKey() []byte {
	if k := os.Getenv("ICONGEN_REPORT_KEY"); k != "" {
		return []byte(k)
	}
	return nil
}

func resolveIn(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func getBool(env string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(env)))
	return err == nil && v
}
