package filestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
)

// LocalStore writes files under a set of directories on the local filesystem.
// Temp and docs must live on the same filesystem so PromoteDocument can use a
// rename.
type LocalStore struct {
	tempDir   string
	docsDir   string
	photosDir string
	cardsDir  string
	logger    *slog.Logger
}

type LocalConfig struct {
	TempDir   string
	DocsDir   string
	PhotosDir string
	CardsDir  string
}

func NewLocalStore(cfg LocalConfig, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{cfg.TempDir, cfg.DocsDir, cfg.PhotosDir, cfg.CardsDir} {
		if dir == "" {
			return nil, common.NewAppError("INVALID_CONFIG", "filestore directory not configured", nil)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &LocalStore{
		tempDir:   cfg.TempDir,
		docsDir:   cfg.DocsDir,
		photosDir: cfg.PhotosDir,
		cardsDir:  cfg.CardsDir,
		logger:    logger,
	}, nil
}

// StageTemp writes an uploaded document into the temp directory under a
// random name, keeping only the original extension.
func (s *LocalStore) StageTemp(r io.Reader, originalName string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(originalName))
	if ext == "" {
		ext = "pdf"
	}
	path := filepath.Join(s.tempDir, uuid.NewString()+"."+ext)
	if err := writeFile(path, r); err != nil {
		return "", err
	}
	s.logger.Debug("staged upload", "path", path, "original_name", originalName)
	return path, nil
}

// PromoteDocument moves a staged document into permanent storage. The final
// name embeds the EPIC number and a per-member unique id so re-registrations
// never collide.
func (s *LocalStore) PromoteDocument(tempPath, epicNumber, uniqueID string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(tempPath))
	if ext == "" {
		ext = "pdf"
	}
	dest := filepath.Join(s.docsDir, sanitize(epicNumber)+"_"+uniqueID+"."+ext)
	if err := os.Rename(tempPath, dest); err != nil {
		return "", fmt.Errorf("promote document: %w", err)
	}
	return dest, nil
}

// SavePhoto stores a member photo alongside the document, named consistently
// with it.
func (s *LocalStore) SavePhoto(r io.Reader, epicNumber, uniqueID, originalName string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(originalName))
	if ext == "" {
		ext = "jpg"
	}
	path := filepath.Join(s.photosDir, sanitize(epicNumber)+"_"+uniqueID+"."+ext)
	if err := writeFile(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// CardPath returns where a generated card for the given stub should live.
func (s *LocalStore) CardPath(stub string) string {
	return filepath.Join(s.cardsDir, sanitize(stub)+".pdf")
}

// Remove deletes a file best-effort. Cleanup failures are logged, never
// propagated: a leftover file is preferable to failing the operation that
// triggered the cleanup.
func (s *LocalStore) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove file", "path", path, "error", err)
	}
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// sanitize strips path separators and whitespace from user-derived name parts.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
	if s == "" {
		return "unnamed"
	}
	return s
}
