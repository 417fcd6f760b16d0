package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GenerateOutputPath returns a fresh transcript path under outputDir, named
// transcript_<YYYYMMDD_HHMMSS>.txt. When that name is already taken a numeric
// suffix is appended so a second run within the same second never reuses the
// first run's file.
func GenerateOutputPath(outputDir string, now time.Time) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	stamp := now.Format("20060102_150405")
	path := filepath.Join(outputDir, fmt.Sprintf("transcript_%s.txt", stamp))
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		path = filepath.Join(outputDir, fmt.Sprintf("transcript_%s_%d.txt", stamp, n))
	}
}

// ReadOutputFile reads the specified output file and returns its text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(content)), nil
}
