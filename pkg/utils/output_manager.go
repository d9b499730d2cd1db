package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateSnapshotOutputDir creates a directory named after a snapshot ID
func (om *OutputManager) CreateSnapshotOutputDir(snapshotID string) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, filepath.Base(snapshotID))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot output directory: %w", err)
	}

	return dir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(snapshotID, fileName string) (string, error) {
	dir, err := om.CreateSnapshotOutputDir(snapshotID)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// FileType maps a file extension to a format name.
func FileType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx", ".xls":
		return "xlsx"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	case ".png":
		return "png"
	case ".svg":
		return "svg"
	default:
		return "unknown"
	}
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
