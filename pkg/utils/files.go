package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadScript reads a script file and returns its text and absolute path.
func ReadScript(relPath string) (src string, fullPath string, err error) {
	fullPath, _, err = GetPathInfo(relPath)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", "", err
	}
	return string(data), fullPath, nil
}

// ReplaceExt swaps the extension of path for ext (which includes the dot).
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// DefaultHistoryPath returns name inside the user's home directory, or an
// empty string when there is no home directory.
func DefaultHistoryPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}
