package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideProject is returned for paths that escape the project directory.
var ErrOutsideProject = errors.New("access denied: path outside project directory")

// ConfinePath resolves filePath against baseDir and rejects results outside
// it, so names like "../../etc/passwd" cannot be loaded as fixtures.
func ConfinePath(filePath, baseDir string) (string, error) {
	target := filePath
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}

	absPath, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if absPath == absBase {
		return absPath, nil
	}
	// The separator suffix keeps /project-evil from matching /project.
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, filePath)
	}
	return absPath, nil
}
