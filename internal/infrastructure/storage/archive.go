// Package storage keeps copies of exported documents on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-drafts/internal/application/port"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// LocalArchive implements port.FileArchive under baseDir/<folder>/<name>.
type LocalArchive struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalArchive creates a new LocalArchive
func NewLocalArchive(baseDir string, logger *zap.Logger) *LocalArchive {
	return &LocalArchive{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content and returns the path it was written to. An existing
// file with the same name is replaced.
func (a *LocalArchive) Save(ctx context.Context, folder, name string, content []byte) (string, error) {
	fullPath, err := a.path(folder, name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		a.logger.Error("Failed to create archive folder", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		a.logger.Error("Failed to write archive file", zap.String("path", tmp), zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	a.logger.Debug("Archived file", zap.String("path", fullPath), zap.Int("size", len(content)))
	return fullPath, nil
}

// Read returns an archived file, or port.ErrNotFound.
func (a *LocalArchive) Read(ctx context.Context, folder, name string) ([]byte, error) {
	fullPath, err := a.path(folder, name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("archive %s/%s: %w", folder, name, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

func (a *LocalArchive) path(folder, name string) (string, error) {
	safeFolder, safeName := SanitizeName(folder), SanitizeName(name)
	if safeFolder == "" || safeName == "" || safeFolder == "." || safeName == "." {
		return "", fmt.Errorf("invalid archive path %q/%q", folder, name)
	}
	fullPath := filepath.Join(a.baseDir, safeFolder, safeName)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(a.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return fullPath, nil
}

// SanitizeName strips separators, parent references and anything outside
// [a-zA-Z0-9-_.].
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeChars.ReplaceAllString(name, "")
}

var _ port.FileArchive = (*LocalArchive)(nil)
